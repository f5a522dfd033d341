package logic

import (
	"context"

	"github.com/guildstats/recordbot/internal/models"
)

// RecordService aggregates match records from the configured source
type RecordService interface {
	Lookup(ctx context.Context, name string) (*models.UserSummary, error)
	RankAll(ctx context.Context) ([]models.RankingEntry, error)
}
