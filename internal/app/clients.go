package app

import (
	"fmt"

	"github.com/yungbote/lecturegate-backend/internal/clients/examsvc"
	"github.com/yungbote/lecturegate-backend/internal/clients/redis"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/keylock"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type Clients struct {
	Exams  *examsvc.Client
	Locker keylock.Locker

	closers []func() error
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	exams, err := examsvc.NewFromEnv(log, metrics)
	if err != nil {
		return Clients{}, fmt.Errorf("init exam service client: %w", err)
	}
	out.Exams = exams

	// Progress writes serialize per (learner, course, lecture). A single
	// replica can use the in-process lock; more than one needs redis.
	if cfg.RedisAddr != "" {
		locker, err := redis.NewLockerFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
		out.Locker = locker
		out.closers = append(out.closers, locker.Close)
	} else {
		log.Warn("REDIS_ADDR not set; progress writes are serialized in-process only")
		out.Locker = keylock.NewLocal()
	}
	return out, nil
}

func (c Clients) Close() {
	for _, fn := range c.closers {
		_ = fn()
	}
}
