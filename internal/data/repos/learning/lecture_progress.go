package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// LectureProgressRepo exposes plain table access. Guarded writes go through the
// lecture progress aggregate.
type LectureProgressRepo interface {
	Create(dbc dbctx.Context, row *domain.LectureProgress) error
	GetByKey(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) (*domain.LectureProgress, error)
	ListByEnrollmentID(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*domain.LectureProgress, error)
}

type lectureProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureProgressRepo(db *gorm.DB, baseLog *logger.Logger) LectureProgressRepo {
	return &lectureProgressRepo{db: db, log: baseLog.With("repo", "LectureProgressRepo")}
}

func (r *lectureProgressRepo) Create(dbc dbctx.Context, row *domain.LectureProgress) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *lectureProgressRepo) GetByKey(dbc dbctx.Context, enrollmentID uuid.UUID, lectureIndex int) (*domain.LectureProgress, error) {
	if enrollmentID == uuid.Nil || lectureIndex < 0 {
		return nil, nil
	}
	var out domain.LectureProgress
	err := dbc.DB(r.db).
		Where("enrollment_id = ? AND lecture_index = ?", enrollmentID, lectureIndex).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *lectureProgressRepo) ListByEnrollmentID(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*domain.LectureProgress, error) {
	var out []*domain.LectureProgress
	if enrollmentID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("enrollment_id = ?", enrollmentID).
		Order("lecture_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
