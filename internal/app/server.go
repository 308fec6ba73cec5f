package app

import (
	httpserver "github.com/yungbote/lecturegate-backend/internal/http"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers, metrics *observability.Metrics) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		GatingHandler:     h.Gating,
		AuthoringHandler:  h.Authoring,
		EnrollmentHandler: h.Enrollment,
		HealthHandler:     h.Health,
	})
}
