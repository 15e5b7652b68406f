package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
	"github.com/yungbote/branchpulse-backend/internal/platform/redisx"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset; report caching degrades to
	// recomputing on every request.
	Redis *goredis.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redisx.NewClient()
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set; report cache disabled")
	}
	return Clients{Redis: rdb}, nil
}
