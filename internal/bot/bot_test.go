package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/models"
	"github.com/guildstats/recordbot/internal/pagination"
)

func newTestBot(records *MockRecordService, jobs JobQueue, timeout time.Duration) (*Bot, *MockDiscord) {
	discord := NewMockDiscord()
	b := New(Config{
		Discord:     discord,
		Records:     records,
		Jobs:        jobs,
		PageTimeout: timeout,
		Logger:      zap.NewNop(),
	})
	return b, discord
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "interaction-" + name,
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name, Options: options},
	}
}

func userOption(value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  optionUserID,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func buttonInteraction(customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "click",
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func rankingOf(n int) []models.RankingEntry {
	entries := make([]models.RankingEntry, n)
	for i := range entries {
		entries[i] = models.RankingEntry{Rank: i + 1, Name: fmt.Sprintf("user%02d", i), Wins: 1, Total: 1, WinRate: 100}
	}
	return entries
}

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		name        string
		summary     *models.UserSummary
		err         error
		wantContent string
		wantTitle   string
	}{
		{
			name:      "Found",
			summary:   &models.UserSummary{Query: "amy", Wins: 2, Losses: 1, Total: 3, WinRate: 66.7, LastSeen: "3월"},
			wantTitle: "📄 amy님의 전적 요약",
		},
		{
			name:        "NotFound",
			wantContent: "📭 `amy`님의 전적 기록이 없습니다.",
		},
		{
			name:        "SourceDown",
			err:         errors.New("sheets api 503"),
			wantContent: msgLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &MockRecordService{
				LookupFunc: func(ctx context.Context, name string) (*models.UserSummary, error) {
					if name != "amy" {
						t.Errorf("Lookup called with %q", name)
					}
					return tt.summary, tt.err
				},
			}
			b, discord := newTestBot(records, &InlineJobs{}, time.Minute)
			defer b.Close()

			b.Handle(commandInteraction(CommandLookup, userOption("amy")))

			if len(discord.Responses) != 1 || discord.Responses[0].Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
				t.Fatalf("expected a single deferred response, got %+v", discord.Responses)
			}
			got := discord.LastFollowup()
			if got == nil {
				t.Fatal("no follow-up sent")
			}
			if tt.wantContent != "" && got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if tt.wantTitle != "" {
				if len(got.Embeds) != 1 || got.Embeds[0].Title != tt.wantTitle {
					t.Errorf("Embeds = %+v, want title %q", got.Embeds, tt.wantTitle)
				}
				if got.Embeds[0].Color != colorBlue {
					t.Errorf("Color = %x, want blue", got.Embeds[0].Color)
				}
			}
		})
	}
}

func TestLookupCommand_MissingOption(t *testing.T) {
	b, discord := newTestBot(&MockRecordService{}, &InlineJobs{}, time.Minute)
	defer b.Close()

	b.Handle(commandInteraction(CommandLookup))

	resp := discord.LastResponse()
	if resp == nil || resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("response = %+v, want an immediate message", resp)
	}
	if len(discord.Followups) != 0 {
		t.Errorf("unexpected follow-ups: %+v", discord.Followups)
	}
}

func TestRankingCommand_EmptyAndFailure(t *testing.T) {
	tests := []struct {
		name        string
		entries     []models.RankingEntry
		err         error
		wantContent string
	}{
		{name: "Empty", wantContent: msgRankingEmpty},
		{name: "SourceDown", err: errors.New("timeout"), wantContent: msgRankingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &MockRecordService{
				RankAllFunc: func(ctx context.Context) ([]models.RankingEntry, error) {
					return tt.entries, tt.err
				},
			}
			b, discord := newTestBot(records, &InlineJobs{}, time.Minute)
			defer b.Close()

			b.Handle(commandInteraction(CommandRanking))

			if got := discord.LastFollowup(); got == nil || got.Content != tt.wantContent {
				t.Errorf("follow-up = %+v, want %q", got, tt.wantContent)
			}
		})
	}
}

func TestRankingCommand_SinglePageHasNoButtons(t *testing.T) {
	records := &MockRecordService{
		RankAllFunc: func(ctx context.Context) ([]models.RankingEntry, error) { return rankingOf(10), nil },
	}
	b, discord := newTestBot(records, &InlineJobs{}, time.Minute)
	defer b.Close()

	b.Handle(commandInteraction(CommandRanking))

	got := discord.LastFollowup()
	if got == nil || len(got.Embeds) != 1 {
		t.Fatalf("follow-up = %+v", got)
	}
	if len(got.Components) != 0 {
		t.Errorf("single page should not carry navigation, got %+v", got.Components)
	}
	if got.Embeds[0].Title != "📊 전체 전적 랭킹 (페이지 1/1)" {
		t.Errorf("Title = %q", got.Embeds[0].Title)
	}
}

func navCustomIDs(t *testing.T, components []discordgo.MessageComponent) (prev, next string, disabled bool) {
	t.Helper()
	if len(components) != 1 {
		t.Fatalf("expected one actions row, got %d", len(components))
	}
	row := components[0].(discordgo.ActionsRow)
	p := row.Components[0].(discordgo.Button)
	n := row.Components[1].(discordgo.Button)
	return p.CustomID, n.CustomID, p.Disabled && n.Disabled
}

func TestRankingCommand_Pagination(t *testing.T) {
	records := &MockRecordService{
		RankAllFunc: func(ctx context.Context) ([]models.RankingEntry, error) { return rankingOf(25), nil },
	}
	b, discord := newTestBot(records, &InlineJobs{}, time.Minute)
	defer b.Close()

	b.Handle(commandInteraction(CommandRanking))

	first := discord.LastFollowup()
	if first == nil || first.Embeds[0].Title != "📊 전체 전적 랭킹 (페이지 1/3)" {
		t.Fatalf("first page = %+v", first)
	}
	prevID, nextID, _ := navCustomIDs(t, first.Components)

	// Prev on the first page is acknowledged without an update
	b.Handle(buttonInteraction(prevID))
	if resp := discord.LastResponse(); resp.Type != discordgo.InteractionResponseDeferredMessageUpdate {
		t.Errorf("prev at page 1 response type = %v, want deferred update", resp.Type)
	}

	wantTypes := []discordgo.InteractionResponseType{
		discordgo.InteractionResponseUpdateMessage,
		discordgo.InteractionResponseUpdateMessage,
		discordgo.InteractionResponseDeferredMessageUpdate,
		discordgo.InteractionResponseDeferredMessageUpdate,
	}
	for step, want := range wantTypes {
		b.Handle(buttonInteraction(nextID))
		resp := discord.LastResponse()
		if resp.Type != want {
			t.Fatalf("next #%d response type = %v, want %v", step+1, resp.Type, want)
		}
	}

	var last *discordgo.InteractionResponse
	for _, r := range discord.Responses {
		if r.Type == discordgo.InteractionResponseUpdateMessage {
			last = r
		}
	}
	if last == nil || last.Data.Embeds[0].Title != "📊 전체 전적 랭킹 (페이지 3/3)" {
		t.Fatalf("last displayed page = %+v", last)
	}
	if !strings.Contains(last.Data.Embeds[0].Description, "25   user24") {
		t.Errorf("last page body = %q", last.Data.Embeds[0].Description)
	}

	b.Handle(buttonInteraction(prevID))
	if resp := discord.LastResponse(); resp.Type != discordgo.InteractionResponseUpdateMessage ||
		resp.Data.Embeds[0].Title != "📊 전체 전적 랭킹 (페이지 2/3)" {
		t.Errorf("prev from last page = %+v", resp)
	}
}

func TestRankingCommand_ExpiryDisablesButtons(t *testing.T) {
	records := &MockRecordService{
		RankAllFunc: func(ctx context.Context) ([]models.RankingEntry, error) { return rankingOf(15), nil },
	}
	b, discord := newTestBot(records, &InlineJobs{}, 30*time.Millisecond)
	defer b.Close()

	b.Handle(commandInteraction(CommandRanking))
	_, nextID, _ := navCustomIDs(t, discord.LastFollowup().Components)

	select {
	case <-discord.edited:
	case <-time.After(time.Second):
		t.Fatal("buttons were not disabled after the timeout")
	}

	discord.mu.Lock()
	edit, editID := discord.Edits[0], discord.EditIDs[0]
	discord.mu.Unlock()
	if editID != "msg-1" {
		t.Errorf("edited message %q, want msg-1", editID)
	}
	if _, _, disabled := navCustomIDs(t, *edit.Components); !disabled {
		t.Error("expired navigation should be disabled")
	}

	responses := len(discord.Responses)
	b.Handle(buttonInteraction(nextID))
	if len(discord.Responses) != responses+1 || discord.LastResponse().Type != discordgo.InteractionResponseDeferredMessageUpdate {
		t.Errorf("click after expiry should only be acknowledged, got %+v", discord.LastResponse())
	}
}

func TestCommand_QueueFull(t *testing.T) {
	called := false
	records := &MockRecordService{
		RankAllFunc: func(ctx context.Context) ([]models.RankingEntry, error) {
			called = true
			return nil, nil
		},
	}
	b, discord := newTestBot(records, &InlineJobs{Full: true}, time.Minute)
	defer b.Close()

	b.Handle(commandInteraction(CommandRanking))

	if called {
		t.Error("ranking ran despite a full queue")
	}
	if got := discord.LastFollowup(); got == nil || got.Content != msgRankingFailed {
		t.Errorf("follow-up = %+v, want failure message", got)
	}
}

func TestParseNavCustomID(t *testing.T) {
	tests := []struct {
		in      string
		wantDir pagination.Direction
		wantID  string
		wantOK  bool
	}{
		{in: "ranking:next:abc", wantDir: pagination.Next, wantID: "abc", wantOK: true},
		{in: "ranking:prev:abc:def", wantDir: pagination.Prev, wantID: "abc:def", wantOK: true},
		{in: "ranking:up:abc"},
		{in: "ranking:next:"},
		{in: "other:next:abc"},
		{in: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dir, id, ok := parseNavCustomID(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (dir != tt.wantDir || id != tt.wantID) {
				t.Errorf("got (%v, %q), want (%v, %q)", dir, id, tt.wantDir, tt.wantID)
			}
		})
	}
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	if len(cmds) != 2 || cmds[0].Name != CommandLookup || cmds[1].Name != CommandRanking {
		t.Fatalf("Commands() = %+v", cmds)
	}
	if opt := cmds[0].Options[0]; opt.Name != optionUserID || !opt.Required {
		t.Errorf("lookup option = %+v", opt)
	}
}
