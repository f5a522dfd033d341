package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/models"
)

const (
	CommandLookup  = "전적"
	CommandRanking = "전적전체"

	optionUserID = "아이디"
)

// User-facing messages
const (
	msgLookupNotFound    = "📭 `%s`님의 전적 기록이 없습니다."
	msgLookupFailed      = "⚠️ 전적을 불러오는 중 오류가 발생했어요."
	msgRankingEmpty      = "📭 전적 데이터가 없습니다."
	msgRankingFailed     = "⚠️ 전적 전체를 불러오는 중 오류가 발생했어요."
	msgMissingUserOption = "⚠️ 조회할 아이디를 입력해 주세요."
)

// Commands returns the slash command definitions to register
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandLookup,
			Description: "특정 유저의 누적 전적을 조회합니다.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionUserID,
					Description: "조회할 유저 아이디",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandRanking,
			Description: "모든 유저의 전적 랭킹을 표시합니다.",
		},
	}
}

// CommandRegistrar is satisfied by *discordgo.Session
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands with Commands().
// An empty guildID registers them globally.
func RegisterCommands(r CommandRegistrar, appID, guildID string) error {
	if _, err := r.ApplicationCommandBulkOverwrite(appID, guildID, Commands()); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

func (b *Bot) handleCommand(i *discordgo.Interaction) {
	data := i.ApplicationCommandData()

	var run func(ctx context.Context)
	var failMsg string
	switch data.Name {
	case CommandLookup:
		name, ok := stringOption(data.Options, optionUserID)
		if !ok {
			b.respondMessage(i, msgMissingUserOption)
			return
		}
		run = func(ctx context.Context) { b.runLookup(ctx, i, name) }
		failMsg = msgLookupFailed
	case CommandRanking:
		run = func(ctx context.Context) { b.runRanking(ctx, i) }
		failMsg = msgRankingFailed
	default:
		b.logger.Warnw("Unknown command", "command", data.Name)
		return
	}

	// Acknowledge before touching the source so the interaction token stays valid
	err := b.discord.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Errorw("Failed to defer interaction", "command", data.Name, "error", err)
		return
	}

	b.logger.Infow("Command received", "command", data.Name, "user", userID(i), "guild", i.GuildID)

	if !b.jobs.Enqueue(data.Name, run) {
		commandsHandled.WithLabelValues(data.Name, string(models.StatusUnavailable)).Inc()
		b.followup(i, &discordgo.WebhookParams{Content: failMsg})
	}
}

func (b *Bot) runLookup(ctx context.Context, i *discordgo.Interaction, name string) {
	res := logic.ResolveLookup(ctx, b.records, b.logger, name)
	commandsHandled.WithLabelValues(CommandLookup, string(res.Status)).Inc()

	switch res.Status {
	case models.StatusOK:
		b.followup(i, &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{summaryEmbed(res.Summary)}})
	case models.StatusNoRecords:
		b.followup(i, &discordgo.WebhookParams{Content: fmt.Sprintf(msgLookupNotFound, name)})
	default:
		b.followup(i, &discordgo.WebhookParams{Content: msgLookupFailed})
	}
}

func (b *Bot) runRanking(ctx context.Context, i *discordgo.Interaction) {
	res := logic.ResolveRanking(ctx, b.records, b.logger)
	commandsHandled.WithLabelValues(CommandRanking, string(res.Status)).Inc()

	switch res.Status {
	case models.StatusEmpty:
		b.followup(i, &discordgo.WebhookParams{Content: msgRankingEmpty})
		return
	case models.StatusUnavailable:
		b.followup(i, &discordgo.WebhookParams{Content: msgRankingFailed})
		return
	}

	pages := logic.Paginate(res.Entries, b.pageSize)
	first := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{pageEmbed(pages[0])}}
	if len(pages) == 1 {
		b.followup(i, first)
		return
	}

	session, err := b.pages.Open(pages)
	if err != nil {
		b.logger.Errorw("Failed to open pagination session", "error", err)
		b.followup(i, first)
		return
	}
	first.Components = navigation(session.ID, false)
	b.logger.Infow("Ranking session opened", "session", session.ID, "pages", session.PageCount(), "entries", len(res.Entries))

	msg := b.followup(i, first)
	if msg == nil {
		return
	}
	b.trackView(session.ID, view{interaction: i, messageID: msg.ID})
}

// followup sends a follow-up message and returns it, or nil if sending failed
func (b *Bot) followup(i *discordgo.Interaction, params *discordgo.WebhookParams) *discordgo.Message {
	msg, err := b.discord.FollowupMessageCreate(i, true, params)
	if err != nil {
		b.logger.Errorw("Failed to send follow-up", "interaction", i.ID, "error", err)
		return nil
	}
	return msg
}

func (b *Bot) respondMessage(i *discordgo.Interaction, content string) {
	err := b.discord.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.logger.Errorw("Failed to respond to interaction", "interaction", i.ID, "error", err)
	}
}

func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			v := opt.StringValue()
			return v, v != ""
		}
	}
	return "", false
}
