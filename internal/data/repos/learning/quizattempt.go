package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempt *domain.QuizAttempt) error
	ListByEnrollmentLecture(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) ([]*domain.QuizAttempt, error)
	CountByEnrollmentLecture(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) (int64, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempt *domain.QuizAttempt) error {
	if attempt == nil {
		return nil
	}
	return dbc.DB(r.db).Create(attempt).Error
}

func (r *quizAttemptRepo) ListByEnrollmentLecture(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) ([]*domain.QuizAttempt, error) {
	var results []*domain.QuizAttempt
	if enrollmentID == uuid.Nil {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("enrollment_id = ? AND lecture_index = ?", enrollmentID, lectureIndex).
		Order("submitted_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) CountByEnrollmentLecture(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) (int64, error) {
	var n int64
	if enrollmentID == uuid.Nil {
		return 0, nil
	}
	err := dbc.DB(r.db).
		Model(&domain.QuizAttempt{}).
		Where("enrollment_id = ? AND lecture_index = ?", enrollmentID, lectureIndex).
		Count(&n).Error
	return n, err
}
