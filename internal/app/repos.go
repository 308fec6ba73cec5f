package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type Repos struct {
	Course          repos.CourseRepo
	Enrollment      repos.EnrollmentRepo
	LectureProgress repos.LectureProgressRepo
	QuizAttempt     repos.QuizAttemptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:          repos.NewCourseRepo(db, log),
		Enrollment:      repos.NewEnrollmentRepo(db, log),
		LectureProgress: repos.NewLectureProgressRepo(db, log),
		QuizAttempt:     repos.NewQuizAttemptRepo(db, log),
	}
}
