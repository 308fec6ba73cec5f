package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/http/handlers"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type Handlers struct {
	Gating     *handlers.GatingHandler
	Authoring  *handlers.AuthoringHandler
	Enrollment *handlers.EnrollmentHandler
	Health     *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Gating:     handlers.NewGatingHandler(log, services.Gate, services.Progress),
		Authoring:  handlers.NewAuthoringHandler(log, services.Authoring),
		Enrollment: handlers.NewEnrollmentHandler(log, services.Enrollment),
		Health:     handlers.NewHealthHandler(db),
	}
}
