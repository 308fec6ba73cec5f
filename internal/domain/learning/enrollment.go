package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_identity,priority:1" json:"learner_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_identity,priority:2;index" json:"course_id"`

	// LectureProgress is keyed by lecture index and assembled from lecture_progress rows.
	LectureProgress map[int]LectureProgress `gorm:"-" json:"lecture_progress"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ProgressAt returns the stored progress for index, or the zero record when absent.
func (e *Enrollment) ProgressAt(index int) LectureProgress {
	if e == nil || e.LectureProgress == nil {
		return LectureProgress{LectureIndex: index}
	}
	p, ok := e.LectureProgress[index]
	if !ok {
		return LectureProgress{LectureIndex: index}
	}
	return p
}

type LectureProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lecture_progress_key,priority:1" json:"-"`
	LectureIndex int       `gorm:"column:lecture_index;not null;uniqueIndex:idx_lecture_progress_key,priority:2" json:"lecture_index"`

	ContentViewed    bool `gorm:"column:content_viewed;not null;default:false" json:"content_viewed"`
	TimeSpentSeconds int  `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	Completed        bool `gorm:"column:completed;not null;default:false" json:"completed"`
	QuizPassed       bool `gorm:"column:quiz_passed;not null;default:false" json:"quiz_passed"`
	LastScore        *int `gorm:"column:last_score" json:"last_score,omitempty"`
	Attempts         int  `gorm:"column:attempts;not null;default:0" json:"attempts"`

	// Version is bumped on every write and backs compare-and-swap updates.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LectureProgress) TableName() string { return "lecture_progress" }

func (p *LectureProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Downgrades reports the monotonic flags that next would reset relative to p.
func (p LectureProgress) Downgrades(next LectureProgress) []string {
	var out []string
	if p.ContentViewed && !next.ContentViewed {
		out = append(out, "content_viewed")
	}
	if p.Completed && !next.Completed {
		out = append(out, "completed")
	}
	if p.QuizPassed && !next.QuizPassed {
		out = append(out, "quiz_passed")
	}
	return out
}

// ProgressDelta is a single learner event folded into LectureProgress.
type ProgressDelta struct {
	ContentViewed    bool
	Completed        bool
	TimeSpentSeconds int
	// Score is set for an assessment submission.
	Score      *int
	QuizPassed bool
}

// Merge folds d into p. Flags only move false to true; score and attempt count
// follow the latest submission.
func (p LectureProgress) Merge(d ProgressDelta) LectureProgress {
	out := p
	out.ContentViewed = p.ContentViewed || d.ContentViewed
	out.Completed = p.Completed || d.Completed
	out.QuizPassed = p.QuizPassed || d.QuizPassed
	if d.TimeSpentSeconds > 0 {
		out.TimeSpentSeconds += d.TimeSpentSeconds
	}
	if d.Score != nil {
		s := *d.Score
		out.LastScore = &s
		out.Attempts = p.Attempts + 1
	}
	return out
}
