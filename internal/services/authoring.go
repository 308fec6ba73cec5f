package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/data/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/modules/assessment"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// ErrCourseExists is returned when a course code is already taken.
var ErrCourseExists = errors.New("course code already exists")

type AuthoringService interface {
	ValidateQuiz(questions []learning.QuizQuestion) error
	SaveCourse(ctx context.Context, course *learning.Course) (*learning.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*learning.Course, error)
}

type authoringService struct {
	log     *logger.Logger
	courses repos.CourseRepo
	runner  aggregates.TxRunner
	metrics *observability.Metrics
}

func NewAuthoringService(baseLog *logger.Logger, courses repos.CourseRepo, runner aggregates.TxRunner, metrics *observability.Metrics) AuthoringService {
	return &authoringService{
		log:     baseLog.With("service", "AuthoringService"),
		courses: courses,
		runner:  runner,
		metrics: metrics,
	}
}

func (s *authoringService) ValidateQuiz(questions []learning.QuizQuestion) error {
	for i := range questions {
		questions[i].Index = i
	}
	err := assessment.ValidateInlineQuiz(questions)
	s.metrics.IncAuthoringValidation("quiz", validationResult(err))
	return err
}

// SaveCourse validates the whole course and then writes course, lectures and
// questions in one transaction. Nothing is written on a validation failure.
func (s *authoringService) SaveCourse(ctx context.Context, course *learning.Course) (*learning.Course, error) {
	if course == nil {
		return nil, learning.NewValidationError(assessment.CodeLecturesMissing, "lectures", "course is required")
	}
	clearStoredFields(course)
	for i := range course.Lectures {
		assessment.InferAssessmentKind(&course.Lectures[i])
		for j := range course.Lectures[i].Questions {
			course.Lectures[i].Questions[j].Index = j
		}
	}
	err := assessment.ValidateCourse(*course)
	s.metrics.IncAuthoringValidation("course", validationResult(err))
	if err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.courses.GetByCode(dbc, course.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrCourseExists
		}
		return s.courses.Create(dbc, course)
	})
	if errors.Is(err, ErrCourseExists) {
		return nil, err
	}
	if err != nil {
		mapped := aggregates.MapError("Authoring.SaveCourse", err)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			return nil, ErrCourseExists
		}
		return nil, learning.NewUpstreamError("course.save", err)
	}
	s.log.Info("course saved", "course_id", course.ID, "code", course.Code, "lectures", len(course.Lectures))
	return course, nil
}

// clearStoredFields drops ids, parent links and timestamps a caller may have
// copied from an existing course. They are assigned on insert.
func clearStoredFields(c *learning.Course) {
	c.ID = uuid.Nil
	c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
	c.DeletedAt = gorm.DeletedAt{}
	for i := range c.Lectures {
		l := &c.Lectures[i]
		l.ID, l.CourseID = uuid.Nil, uuid.Nil
		l.CreatedAt, l.UpdatedAt = time.Time{}, time.Time{}
		for j := range l.Questions {
			q := &l.Questions[j]
			q.ID, q.LectureID = uuid.Nil, uuid.Nil
			q.CreatedAt, q.UpdatedAt = time.Time{}, time.Time{}
		}
	}
}

func (s *authoringService) GetCourse(ctx context.Context, courseID uuid.UUID) (*learning.Course, error) {
	c, err := s.courses.GetByID(dbctx.Context{Ctx: ctx}, courseID)
	if err != nil {
		return nil, learning.NewUpstreamError("course.get", err)
	}
	if c == nil {
		return nil, learning.NewNotFoundError("course", courseID.String())
	}
	return c, nil
}

func validationResult(err error) string {
	var ve *learning.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	if err != nil {
		return "error"
	}
	return "ok"
}
