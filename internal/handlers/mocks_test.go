package handlers

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/guildstats/recordbot/internal/models"
)

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

type MockQueue struct {
	Depth int
}

func (m *MockQueue) QueueDepth() int { return m.Depth }

type MockPinger struct {
	Down bool
}

func (m *MockPinger) Ping(ctx context.Context) *redis.StatusCmd {
	if m.Down {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	return redis.NewStatusResult("PONG", nil)
}
