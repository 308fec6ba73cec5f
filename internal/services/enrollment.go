package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, learnerID, courseID uuid.UUID) (*learning.Enrollment, error)
}

type enrollmentService struct {
	log         *logger.Logger
	courses     repos.CourseRepo
	enrollments repos.EnrollmentRepo
}

func NewEnrollmentService(baseLog *logger.Logger, courses repos.CourseRepo, enrollments repos.EnrollmentRepo) EnrollmentService {
	return &enrollmentService{
		log:         baseLog.With("service", "EnrollmentService"),
		courses:     courses,
		enrollments: enrollments,
	}
}

// Enroll is idempotent: enrolling twice returns the existing enrollment.
func (s *enrollmentService) Enroll(ctx context.Context, learnerID, courseID uuid.UUID) (*learning.Enrollment, error) {
	if learnerID == uuid.Nil {
		return nil, learning.NewValidationError("learner_id_missing", "learner_id", "learner id is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, learning.NewUpstreamError("course.get", err)
	}
	if course == nil {
		return nil, learning.NewNotFoundError("course", courseID.String())
	}
	e, err := s.enrollments.Create(dbc, learnerID, courseID)
	if err != nil {
		return nil, learning.NewUpstreamError("enrollment.create", err)
	}
	s.log.Info("learner enrolled", "learner_id", learnerID, "course_id", courseID, "enrollment_id", e.ID)
	return e, nil
}
