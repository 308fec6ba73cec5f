package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentKind string

const (
	AssessmentNone   AssessmentKind = "none"
	AssessmentInline AssessmentKind = "inline"
	AssessmentFormal AssessmentKind = "formal"
)

// Assessment is None | Inline(InlineQuiz) | Formal(examID).
type Assessment struct {
	Kind   AssessmentKind
	Inline *InlineQuiz
	ExamID string
}

func (a Assessment) Attached() bool {
	return a.Kind == AssessmentInline || a.Kind == AssessmentFormal
}

type InlineQuiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuestionType string

const (
	QuestionMCQ   QuestionType = "mcq"
	QuestionShort QuestionType = "short"
)

type QuizQuestion struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"lecture_id"`
	Index         int                         `gorm:"column:position;not null" json:"index"`
	Text          string                      `gorm:"column:text;not null" json:"text"`
	Type          QuestionType                `gorm:"column:type;not null" json:"type"`
	Options       datatypes.JSONSlice[string] `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	CorrectAnswer string                      `gorm:"column:correct_answer" json:"correct_answer"`
	Points        int                         `gorm:"column:points;not null;default:1" json:"points"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// FormalExam is owned by the external exam service and only referenced by id here.
type FormalExam struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	TimeLimitMinutes int                `json:"time_limit_minutes"`
	PassingScore     int                `json:"passing_score"`
	MaxAttempts      int                `json:"max_attempts"`
	ShuffleQuestions bool               `json:"shuffle_questions"`
	Questions        []FormalExamSketch `json:"questions,omitempty"`
}

// FormalExamSketch is the non-sensitive part of an external exam question.
type FormalExamSketch struct {
	ID   string `json:"id"`
	Type string `json:"type"` // mcq|short_answer|essay
}

// ExamAttemptResult is the exam service's verdict for one formal attempt.
type ExamAttemptResult struct {
	Score          int  `json:"score"`
	Passed         bool `json:"passed"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
}
