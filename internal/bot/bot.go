package bot

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/pagination"
)

var commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recordbot_commands_total",
	Help: "Slash commands handled by command and result status",
}, []string{"command", "status"})

// Discord is the part of *discordgo.Session the bot talks to
type Discord interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// JobQueue runs command work after the interaction has been acknowledged
type JobQueue interface {
	Enqueue(name string, run func(ctx context.Context)) bool
}

type Config struct {
	Discord     Discord
	Records     logic.RecordService
	Jobs        JobQueue
	PageSize    int
	PageTimeout time.Duration
	Logger      *zap.Logger
}

// view is the follow-up message a pagination session is attached to
type view struct {
	interaction *discordgo.Interaction
	messageID   string
}

type Bot struct {
	discord  Discord
	records  logic.RecordService
	jobs     JobQueue
	pages    *pagination.Manager
	pageSize int
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	views map[string]view
}

func New(cfg Config) *Bot {
	if cfg.PageSize <= 0 {
		cfg.PageSize = logic.DefaultPageSize
	}
	b := &Bot{
		discord:  cfg.Discord,
		records:  cfg.Records,
		jobs:     cfg.Jobs,
		pageSize: cfg.PageSize,
		logger:   cfg.Logger.Sugar(),
		views:    make(map[string]view),
	}
	b.pages = pagination.NewManager(pagination.ManagerConfig{
		Timeout:  cfg.PageTimeout,
		OnExpire: b.onSessionExpired,
		Logger:   cfg.Logger,
	})
	return b
}

// OnInteraction is registered with discordgo's AddHandler
func (b *Bot) OnInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	b.Handle(ic.Interaction)
}

// Handle dispatches one interaction
func (b *Bot) Handle(i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(i)
	}
}

// Close expires every pagination session. Buttons on live messages are left as-is.
func (b *Bot) Close() {
	b.pages.Close()
}

func (b *Bot) trackView(sessionID string, v view) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.views[sessionID] = v
}

func (b *Bot) takeView(sessionID string) (view, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.views[sessionID]
	delete(b.views, sessionID)
	return v, ok
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
