package learning

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassingScore is the only fallback threshold used when a lecture does not
// configure its own passing score.
const DefaultPassingScore = 60

type Course struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code  string    `gorm:"column:code;not null;uniqueIndex" json:"code" validate:"required,len=5,number"`
	Title string    `gorm:"column:title;not null" json:"title"`

	Lectures []Lecture `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:CASCADE" json:"lectures"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SortLectures orders lectures by their published index.
func (c *Course) SortLectures() {
	sort.SliceStable(c.Lectures, func(i, j int) bool { return c.Lectures[i].Index < c.Lectures[j].Index })
}

// ContentItem is opaque to gating beyond "has content".
type ContentItem struct {
	Kind            string `json:"kind"` // video|pdf|image
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type Lecture struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lecture_position,priority:1" json:"course_id"`
	Index    int       `gorm:"column:position;not null;uniqueIndex:idx_lecture_position,priority:2" json:"index"`
	Code     string    `gorm:"column:code;not null" json:"code" validate:"required,len=5,number"`
	Title    string    `gorm:"column:title;not null" json:"title" validate:"nonblank"`

	ContentItems datatypes.JSONSlice[ContentItem] `gorm:"column:content_items;type:jsonb" json:"content_items"`

	AssessmentKind AssessmentKind `gorm:"column:assessment_kind;not null;default:'none'" json:"assessment_kind"`
	FormalExamID   string         `gorm:"column:formal_exam_id" json:"formal_exam_id,omitempty"`
	Questions      []QuizQuestion `gorm:"foreignKey:LectureID;references:ID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`

	ExamRequired bool `gorm:"column:exam_required;not null;default:false" json:"exam_required"`
	PassingScore *int `gorm:"column:passing_score" json:"passing_score,omitempty"`
	IsLocked     bool `gorm:"column:is_locked;not null;default:false" json:"is_locked"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lecture) TableName() string { return "lecture" }

func (l *Lecture) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// EffectivePassingScore returns the lecture's configured threshold, or fallback
// when none is set. A non-positive fallback resolves to DefaultPassingScore.
func (l Lecture) EffectivePassingScore(fallback int) int {
	if l.PassingScore != nil {
		return *l.PassingScore
	}
	if fallback <= 0 {
		return DefaultPassingScore
	}
	return fallback
}

func (l Lecture) HasContent() bool { return len(l.ContentItems) > 0 }

// Assessment returns the tagged assessment attached to the lecture.
func (l Lecture) Assessment() Assessment {
	switch l.AssessmentKind {
	case AssessmentInline:
		qs := make([]QuizQuestion, len(l.Questions))
		copy(qs, l.Questions)
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].Index < qs[j].Index })
		return Assessment{Kind: AssessmentInline, Inline: &InlineQuiz{Questions: qs}}
	case AssessmentFormal:
		return Assessment{Kind: AssessmentFormal, ExamID: l.FormalExamID}
	default:
		return Assessment{Kind: AssessmentNone}
	}
}

func (l Lecture) HasAssessment() bool { return l.Assessment().Attached() }
