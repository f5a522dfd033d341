package logic

import (
	"context"

	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/models"
)

// ResolveLookup runs a lookup and folds source failures into a status.
// The error is logged here and never reaches the caller.
func ResolveLookup(ctx context.Context, svc RecordService, logger *zap.SugaredLogger, name string) models.LookupResult {
	summary, err := svc.Lookup(ctx, name)
	if err != nil {
		logger.Errorw("Record lookup failed", "name", name, "error", err)
		return models.LookupResult{Status: models.StatusUnavailable}
	}
	if summary == nil {
		return models.LookupResult{Status: models.StatusNoRecords}
	}
	return models.LookupResult{Status: models.StatusOK, Summary: summary}
}

// ResolveRanking is the leaderboard counterpart of ResolveLookup
func ResolveRanking(ctx context.Context, svc RecordService, logger *zap.SugaredLogger) models.RankingResult {
	entries, err := svc.RankAll(ctx)
	if err != nil {
		logger.Errorw("Ranking failed", "error", err)
		return models.RankingResult{Status: models.StatusUnavailable}
	}
	if len(entries) == 0 {
		return models.RankingResult{Status: models.StatusEmpty}
	}
	return models.RankingResult{Status: models.StatusOK, Entries: entries}
}
