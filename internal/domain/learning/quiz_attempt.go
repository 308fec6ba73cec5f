package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptSource string

const (
	AttemptSourceInline AttemptSource = "inline"
	AttemptSourceFormal AttemptSource = "formal"
)

// QuizAttempt is immutable once written.
type QuizAttempt struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID   uuid.UUID                   `gorm:"type:uuid;not null;index:idx_quiz_attempt_lookup,priority:1" json:"enrollment_id"`
	LearnerID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"learner_id"`
	CourseID       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"course_id"`
	LectureIndex   int                         `gorm:"column:lecture_index;not null;index:idx_quiz_attempt_lookup,priority:2" json:"lecture_index"`
	Source         AttemptSource               `gorm:"column:source;not null" json:"source"`
	Answers        datatypes.JSONSlice[string] `gorm:"column:answers;type:jsonb" json:"answers"`
	Score          int                         `gorm:"column:score;not null" json:"score"`
	CorrectCount   int                         `gorm:"column:correct_count;not null" json:"correct_count"`
	TotalQuestions int                         `gorm:"column:total_questions;not null" json:"total_questions"`
	Passed         bool                        `gorm:"column:passed;not null" json:"passed"`
	SubmittedAt    time.Time                   `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}
	return nil
}
