package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/guildstats/recordbot/internal/models"
)

// MockDiscord records every call the bot makes
type MockDiscord struct {
	mu        sync.Mutex
	Responses []*discordgo.InteractionResponse
	Followups []*discordgo.WebhookParams
	Edits     []*discordgo.WebhookEdit
	EditIDs   []string
	edited    chan struct{}
}

func NewMockDiscord() *MockDiscord {
	return &MockDiscord{edited: make(chan struct{}, 10)}
}

func (m *MockDiscord) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, resp)
	return nil
}

func (m *MockDiscord) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Followups = append(m.Followups, data)
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", len(m.Followups))}, nil
}

func (m *MockDiscord) FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	m.Edits = append(m.Edits, data)
	m.EditIDs = append(m.EditIDs, messageID)
	m.mu.Unlock()
	m.edited <- struct{}{}
	return &discordgo.Message{ID: messageID}, nil
}

func (m *MockDiscord) LastResponse() *discordgo.InteractionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return nil
	}
	return m.Responses[len(m.Responses)-1]
}

func (m *MockDiscord) LastFollowup() *discordgo.WebhookParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Followups) == 0 {
		return nil
	}
	return m.Followups[len(m.Followups)-1]
}

// MockRecordService
type MockRecordService struct {
	LookupFunc  func(ctx context.Context, name string) (*models.UserSummary, error)
	RankAllFunc func(ctx context.Context) ([]models.RankingEntry, error)
}

func (m *MockRecordService) Lookup(ctx context.Context, name string) (*models.UserSummary, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockRecordService) RankAll(ctx context.Context) ([]models.RankingEntry, error) {
	if m.RankAllFunc != nil {
		return m.RankAllFunc(ctx)
	}
	return nil, nil
}

// InlineJobs runs jobs synchronously unless Full is set
type InlineJobs struct {
	Full bool
}

func (q *InlineJobs) Enqueue(name string, run func(ctx context.Context)) bool {
	if q.Full {
		return false
	}
	run(context.Background())
	return true
}
