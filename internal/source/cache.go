package source

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/models"
)

const DefaultSnapshotKey = "recordbot:sheets:snapshot"

var snapshotLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recordbot_snapshot_cache_lookups_total",
	Help: "Snapshot cache lookups by result (hit, miss, error)",
}, []string{"result"})

// RedisClient defines the subset of the Redis client used by the snapshot cache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached keeps a copy of the raw sheets in Redis for a bounded time.
// Rankings are still computed on every query; only the source read is shared.
type Cached struct {
	next   Source
	redis  RedisClient
	key    string
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewCached wraps next with a Redis snapshot. A non-positive ttl or nil client
// returns next unchanged.
func NewCached(next Source, rdb RedisClient, key string, ttl time.Duration, logger *zap.Logger) Source {
	if ttl <= 0 || rdb == nil {
		return next
	}
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &Cached{
		next:   next,
		redis:  rdb,
		key:    key,
		ttl:    ttl,
		logger: logger.Sugar(),
	}
}

func (c *Cached) Sheets(ctx context.Context) ([]models.Sheet, error) {
	raw, err := c.redis.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var sheets []models.Sheet
		jsonErr := json.Unmarshal(raw, &sheets)
		if jsonErr == nil {
			snapshotLookups.WithLabelValues("hit").Inc()
			return sheets, nil
		}
		c.logger.Warnw("Discarding corrupt sheet snapshot", "key", c.key, "error", jsonErr)
		snapshotLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		snapshotLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warnw("Snapshot cache read failed, reading source directly", "key", c.key, "error", err)
		snapshotLookups.WithLabelValues("error").Inc()
	}

	sheets, err := c.next.Sheets(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(sheets)
	if err != nil {
		c.logger.Warnw("Failed to encode sheet snapshot", "error", err)
		return sheets, nil
	}
	if err := c.redis.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.logger.Warnw("Failed to store sheet snapshot", "key", c.key, "error", err)
	}
	return sheets, nil
}
