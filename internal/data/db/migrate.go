package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Content store
		&learning.Course{},
		&learning.Lecture{},
		&learning.QuizQuestion{},

		// Enrollment store
		&learning.Enrollment{},
		&learning.LectureProgress{},
		&learning.QuizAttempt{},
	)
}

// EnsureProgressConstraints adds postgres CHECK constraints that gorm tags cannot express.
func EnsureProgressConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "chk_lecture_passing_score",
			sql: `DO $$ BEGIN
	ALTER TABLE lecture ADD CONSTRAINT chk_lecture_passing_score
		CHECK (passing_score IS NULL OR (passing_score >= 0 AND passing_score <= 100));
EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		},
		{
			name: "chk_lecture_progress_counts",
			sql: `DO $$ BEGIN
	ALTER TABLE lecture_progress ADD CONSTRAINT chk_lecture_progress_counts
		CHECK (attempts >= 0 AND time_spent_seconds >= 0 AND version >= 0);
EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("auto-migrating postgres schema")
	if err := AutoMigrateAll(s.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureProgressConstraints(s.db)
}
