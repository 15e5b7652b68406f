package app

import (
	"time"

	"github.com/yungbote/branchpulse-backend/internal/platform/envutil"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type Config struct {
	Port            string
	AuthSecret      string
	PolicyPath      string
	ForecastWorkers int
	ReportCacheTTL  time.Duration
	WorkerEnabled   bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		AuthSecret:      envutil.String("AUTH_SECRET", ""),
		PolicyPath:      envutil.String("POLICY_PATH", ""),
		ForecastWorkers: envutil.Int("FORECAST_WORKERS", 4),
		ReportCacheTTL:  envutil.Duration("REPORT_CACHE_TTL", 5*time.Minute),
		WorkerEnabled:   envutil.Bool("WORKER_ENABLED", true),
	}
	if cfg.AuthSecret == "" {
		log.Warn("AUTH_SECRET not set; mutating routes will reject tokens unless AUTH_DISABLED=true")
	}
	return cfg
}
