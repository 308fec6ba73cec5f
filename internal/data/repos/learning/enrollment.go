package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	// Create is idempotent on (learner, course) and returns the stored row.
	Create(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*domain.Enrollment, error)
	// GetByLearnerAndCourse returns nil when the learner is not enrolled.
	GetByLearnerAndCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*domain.Enrollment, error)
}

type enrollmentRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	progress LectureProgressRepo
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{
		db:       db,
		log:      baseLog.With("repo", "EnrollmentRepo"),
		progress: NewLectureProgressRepo(db, baseLog),
	}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*domain.Enrollment, error) {
	row := &domain.Enrollment{LearnerID: learnerID, CourseID: courseID}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByLearnerAndCourse(dbc, learnerID, courseID)
}

func (r *enrollmentRepo) GetByLearnerAndCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*domain.Enrollment, error) {
	if learnerID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	var out domain.Enrollment
	err := dbc.DB(r.db).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.progress.ListByEnrollmentID(dbc, out.ID)
	if err != nil {
		return nil, err
	}
	out.LectureProgress = make(map[int]domain.LectureProgress, len(rows))
	for _, p := range rows {
		if p == nil {
			continue
		}
		out.LectureProgress[p.LectureIndex] = *p
	}
	return &out, nil
}
