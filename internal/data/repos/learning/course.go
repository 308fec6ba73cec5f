package learning

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// CourseRepo is the content store: courses with ordered lectures and their quizzes.
type CourseRepo interface {
	Create(dbc dbctx.Context, course *domain.Course) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Course, error)
	GetByCode(dbc dbctx.Context, code string) (*domain.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

// Create inserts the course, its lectures and their questions.
func (r *courseRepo) Create(dbc dbctx.Context, course *domain.Course) error {
	if course == nil {
		return nil
	}
	return dbc.DB(r.db).Create(course).Error
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Course, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *courseRepo) GetByCode(dbc dbctx.Context, code string) (*domain.Course, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.first(dbc, "code = ?", code)
}

func (r *courseRepo) first(dbc dbctx.Context, query string, args ...any) (*domain.Course, error) {
	var out domain.Course
	err := dbc.DB(r.db).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Lectures.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(query, args...).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out.SortLectures()
	return &out, nil
}
