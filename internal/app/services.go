package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/data/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/modules/assessment"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"github.com/yungbote/lecturegate-backend/internal/services"
)

type Services struct {
	Gate       services.AccessGate
	Progress   services.ProgressService
	Enrollment services.EnrollmentService
	Authoring  services.AuthoringService
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	policy, err := assessment.LoadPolicy()
	if err != nil {
		return Services{}, fmt.Errorf("load gating policy: %w", err)
	}
	log.Info("gating policy loaded",
		"default_passing_score", policy.DefaultPassingScore,
		"lenient_short_answers", policy.LenientShortAnswers,
	)

	progressAgg := aggregates.NewLectureProgressAggregate(aggregates.LectureProgressAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Progress: repos.LectureProgress,
		Attempts: repos.QuizAttempt,
	})
	evaluator := assessment.NewEvaluator(policy, clients.Exams, log)

	return Services{
		Gate: services.NewAccessGate(
			log,
			repos.Course,
			repos.Enrollment,
			repos.LectureProgress,
			repos.QuizAttempt,
			progressAgg,
			clients.Locker,
			evaluator,
			metrics,
		),
		Progress: services.NewProgressService(
			log,
			repos.Course,
			repos.Enrollment,
			repos.LectureProgress,
			progressAgg,
			clients.Locker,
			metrics,
		),
		Enrollment: services.NewEnrollmentService(log, repos.Course, repos.Enrollment),
		Authoring:  services.NewAuthoringService(log, repos.Course, aggregates.NewGormTxRunner(db), metrics),
	}, nil
}
