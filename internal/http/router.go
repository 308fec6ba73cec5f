package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lecturegate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lecturegate-backend/internal/http/middleware"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	GatingHandler     *httpH.GatingHandler
	AuthoringHandler  *httpH.AuthoringHandler
	EnrollmentHandler *httpH.EnrollmentHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Gating
		if cfg.GatingHandler != nil {
			api.GET("/status", cfg.GatingHandler.Status)
			api.GET("/authorize-view", cfg.GatingHandler.AuthorizeView)
			api.POST("/submit", cfg.GatingHandler.Submit)
			api.POST("/view", cfg.GatingHandler.RecordView)
			api.GET("/attempts", cfg.GatingHandler.ListAttempts)
			api.GET("/exam", cfg.GatingHandler.DescribeExam)
		}

		// Enrollment
		if cfg.EnrollmentHandler != nil {
			api.POST("/enrollments", cfg.EnrollmentHandler.Enroll)
		}

		// Authoring
		if cfg.AuthoringHandler != nil {
			api.POST("/validate-quiz", cfg.AuthoringHandler.ValidateQuiz)
			api.POST("/courses", cfg.AuthoringHandler.CreateCourse)
			api.GET("/courses/:id", cfg.AuthoringHandler.GetCourse)
		}
	}

	return r
}
