package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
)

func TestEnrollmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	course := testutil.SeedCourse(t, ctx, tx, testutil.NewCourse(2))
	learnerID := uuid.New()

	repo := NewEnrollmentRepo(db, log)
	progress := NewLectureProgressRepo(db, log)

	none, err := repo.GetByLearnerAndCourse(dbc, learnerID, course.ID)
	if err != nil || none != nil {
		t.Fatalf("GetByLearnerAndCourse before enroll: err=%v row=%v", err, none)
	}

	e1, err := repo.Create(dbc, learnerID, course.ID)
	if err != nil || e1 == nil {
		t.Fatalf("Create: err=%v row=%v", err, e1)
	}
	e2, err := repo.Create(dbc, learnerID, course.ID)
	if err != nil || e2 == nil || e2.ID != e1.ID {
		t.Fatalf("Create should be idempotent: err=%v first=%v second=%v", err, e1, e2)
	}

	if err := progress.Create(dbc, &domain.LectureProgress{
		EnrollmentID:  e1.ID,
		LectureIndex:  1,
		ContentViewed: true,
		Completed:     true,
		Version:       1,
	}); err != nil {
		t.Fatalf("progress Create: %v", err)
	}

	got, err := repo.GetByLearnerAndCourse(dbc, learnerID, course.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByLearnerAndCourse: err=%v row=%v", err, got)
	}
	if len(got.LectureProgress) != 1 || !got.ProgressAt(1).Completed {
		t.Fatalf("progress map: %+v", got.LectureProgress)
	}
	if p := got.ProgressAt(0); p.ContentViewed || p.Completed || p.Attempts != 0 {
		t.Fatalf("absent progress should be zero: %+v", p)
	}
}

func TestQuizAttemptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQuizAttemptRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, testutil.NewCourse(1))
	e := testutil.SeedEnrollment(t, ctx, tx, uuid.New(), course.ID)

	for _, score := range []int{40, 80} {
		if err := repo.Create(dbc, &domain.QuizAttempt{
			EnrollmentID:   e.ID,
			LearnerID:      e.LearnerID,
			CourseID:       course.ID,
			LectureIndex:   0,
			Source:         domain.AttemptSourceInline,
			Answers:        []string{"A", "B"},
			Score:          score,
			TotalQuestions: 5,
			Passed:         score >= domain.DefaultPassingScore,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := repo.ListByEnrollmentLecture(dbc, e.ID, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByEnrollmentLecture: err=%v len=%d", err, len(rows))
	}
	if rows[0].SubmittedAt.IsZero() || rows[0].ID == uuid.Nil {
		t.Fatalf("defaults not applied: %+v", rows[0])
	}
	if len(rows[1].Answers) != 2 {
		t.Fatalf("answers not round-tripped: %+v", rows[1].Answers)
	}
	if n, err := repo.CountByEnrollmentLecture(dbc, e.ID, 1); err != nil || n != 0 {
		t.Fatalf("CountByEnrollmentLecture other lecture: err=%v n=%d", err, n)
	}
}
