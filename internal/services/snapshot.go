package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
)

// snapshot is the read-only input the progression engine derives status from.
type snapshot struct {
	Course     *learning.Course
	Enrollment *learning.Enrollment
}

type snapshotLoader struct {
	courses     repos.CourseRepo
	enrollments repos.EnrollmentRepo
}

// load reads the course and the learner's enrollment concurrently. A missing
// course is NotFound; a missing enrollment is left nil.
func (l snapshotLoader) load(ctx context.Context, learnerID, courseID uuid.UUID) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := l.courses.GetByID(dbctx.Context{Ctx: gctx}, courseID)
		if err != nil {
			return learning.NewUpstreamError("course.get", err)
		}
		snap.Course = c
		return nil
	})
	g.Go(func() error {
		e, err := l.enrollments.GetByLearnerAndCourse(dbctx.Context{Ctx: gctx}, learnerID, courseID)
		if err != nil {
			return learning.NewUpstreamError("enrollment.get", err)
		}
		snap.Enrollment = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	if snap.Course == nil {
		return snapshot{}, learning.NewNotFoundError("course", courseID.String())
	}
	return snap, nil
}

// withProgress returns a copy of e whose progress at index is replaced by p.
func withProgress(e *learning.Enrollment, p learning.LectureProgress) *learning.Enrollment {
	if e == nil {
		return nil
	}
	out := *e
	out.LectureProgress = make(map[int]learning.LectureProgress, len(e.LectureProgress)+1)
	for k, v := range e.LectureProgress {
		out.LectureProgress[k] = v
	}
	out.LectureProgress[p.LectureIndex] = p
	return &out
}
