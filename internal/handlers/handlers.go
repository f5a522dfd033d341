package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/logic"
)

// CommandQueue exposes the worker pool backlog for readiness reporting
type CommandQueue interface {
	QueueDepth() int
}

// Pinger is satisfied by *redis.Client
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Records  logic.RecordService
	Queue    CommandQueue
	Redis    Pinger
	PageSize int
	Logger   *zap.Logger
}

type Handler struct {
	records   logic.RecordService
	queue     CommandQueue
	redis     Pinger
	pageSize  int
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = logic.DefaultPageSize
	}
	return &Handler{
		records:   cfg.Records,
		queue:     cfg.Queue,
		redis:     cfg.Redis,
		pageSize:  cfg.PageSize,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}
