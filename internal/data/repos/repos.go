package repos

import (
	"github.com/yungbote/lecturegate-backend/internal/data/repos/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CourseRepo = learning.CourseRepo
type EnrollmentRepo = learning.EnrollmentRepo
type LectureProgressRepo = learning.LectureProgressRepo
type QuizAttemptRepo = learning.QuizAttemptRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewLectureProgressRepo(db *gorm.DB, baseLog *logger.Logger) LectureProgressRepo {
	return learning.NewLectureProgressRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return learning.NewQuizAttemptRepo(db, baseLog)
}
