package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

func PtrInt(v int) *int { return &v }

func Video(url string) learning.ContentItem {
	return learning.ContentItem{Kind: "video", URL: url, DurationSeconds: 300}
}

// MCQ builds a two-option question whose correct answer is "B".
func MCQ(index int) learning.QuizQuestion {
	return learning.QuizQuestion{
		Index:         index,
		Text:          fmt.Sprintf("question %d", index+1),
		Type:          learning.QuestionMCQ,
		Options:       []string{"A", "B"},
		CorrectAnswer: "B",
		Points:        1,
	}
}

func InlineQuestions(n int) []learning.QuizQuestion {
	out := make([]learning.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, MCQ(i))
	}
	return out
}

// NewCourse returns an unsaved course of n plain lectures with one video each.
func NewCourse(n int) *learning.Course {
	c := &learning.Course{
		Code:  "10001",
		Title: "course",
	}
	for i := 0; i < n; i++ {
		c.Lectures = append(c.Lectures, learning.Lecture{
			Index:          i,
			Code:           fmt.Sprintf("%05d", 20001+i),
			Title:          fmt.Sprintf("lecture %d", i+1),
			ContentItems:   []learning.ContentItem{Video(fmt.Sprintf("https://cdn.example.com/%d.mp4", i))},
			AssessmentKind: learning.AssessmentNone,
		})
	}
	return c
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, c *learning.Course) *learning.Course {
	tb.Helper()
	if c.Code == "" {
		c.Code = fmt.Sprintf("%05d", 10000+int(uuid.New().ID()%89999))
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, courseID uuid.UUID) *learning.Enrollment {
	tb.Helper()
	e := &learning.Enrollment{LearnerID: learnerID, CourseID: courseID}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}
