package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/calisthenics-backend/internal/clients/redis"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/realtime/bus"
)

// Clients holds optional external connections. Redis and SSEBus are nil
// when REDIS_ADDR is unset; the leaderboard then reads from postgres and
// events stay on this instance.
type Clients struct {
	Redis  *goredis.Client
	SSEBus bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if !cfg.Redis.Enabled() {
		log.Info("redis disabled; leaderboard falls back to postgres")
		return Clients{}, nil
	}
	rdb, err := redis.NewClient(ctx, log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	b, err := bus.NewRedisBus(log, rdb, cfg.SSEChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	return Clients{Redis: rdb, SSEBus: b}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
