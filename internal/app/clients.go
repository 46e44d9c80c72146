package app

import (
	"context"
	"fmt"

	"github.com/yungbote/quizprogress-backend/internal/clients/redis"
	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// Clients holds optional external connections; nil fields mean the feature is off.
type Clients struct {
	Bus          redis.ProgressBus
	AvatarBucket gcp.AvatarBucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	if cfg.Redis.Addr != "" {
		bus, err := redis.NewProgressBus(log, cfg.BusConfig())
		if err != nil {
			return Clients{}, fmt.Errorf("init redis progress bus: %w", err)
		}
		out.Bus = bus
	} else {
		log.Info("REDIS_ADDR not set; progress events disabled")
	}

	bucket, err := resolveAvatarBucket(ctx, log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.AvatarBucket = bucket
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.AvatarBucket != nil {
		_ = c.AvatarBucket.Close()
	}
}
