package app

import (
	"strings"
	"time"

	"github.com/yungbote/lecturegate-backend/internal/platform/envutil"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type Config struct {
	Port            string
	ServiceName     string
	Environment     string
	Version         string
	CORSOrigins     []string
	RedisAddr       string
	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		ServiceName:     envutil.String("SERVICE_NAME", "lecturegate-api"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		CORSOrigins:     splitList(envutil.String("CORS_ALLOW_ORIGINS", "")),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	log.Info("config loaded",
		"port", cfg.Port,
		"env", cfg.Environment,
		"cors_origins", len(cfg.CORSOrigins),
		"redis_lock", cfg.RedisAddr != "",
	)
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
