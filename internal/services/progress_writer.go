package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/keylock"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// maxProgressWrites bounds how often a lost compare-and-swap is replayed.
const maxProgressWrites = 2

// progressWriter folds one event into a lecture's progress under the per-key
// lock and the aggregate's version check.
type progressWriter struct {
	log      *logger.Logger
	progress repos.LectureProgressRepo
	agg      domainagg.LectureProgressAggregate
	locker   keylock.Locker
}

func (w progressWriter) lock(ctx context.Context, learnerID, courseID uuid.UUID, index int) (func(), error) {
	key := keylock.Key("progress", learnerID.String(), courseID.String(), strconv.Itoa(index))
	unlock, err := w.locker.Lock(ctx, key)
	if err != nil {
		return nil, learning.NewUpstreamError("progress.lock", err)
	}
	return unlock, nil
}

// apply re-reads, merges and writes. A lost race is retried once; a second
// loss is reported as UpstreamError with progress unchanged.
func (w progressWriter) apply(ctx context.Context, enrollmentID uuid.UUID, index int, delta learning.ProgressDelta, attempt *learning.QuizAttempt) (domainagg.ApplyLectureProgressResult, error) {
	var lastErr error
	for try := 0; try < maxProgressWrites; try++ {
		current, err := w.progress.GetByKey(dbctx.Context{Ctx: ctx}, enrollmentID, index)
		if err != nil {
			return domainagg.ApplyLectureProgressResult{}, learning.NewUpstreamError("progress.get", err)
		}
		base := learning.LectureProgress{LectureIndex: index}
		expected := 0
		if current != nil {
			base = *current
			expected = current.Version
		}
		out, err := w.agg.Apply(ctx, domainagg.ApplyLectureProgressInput{
			EnrollmentID:    enrollmentID,
			LectureIndex:    index,
			ExpectedVersion: expected,
			Next:            base.Merge(delta),
			Attempt:         attempt,
		})
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !domainagg.IsRetryable(err) {
			break
		}
		w.log.Warn("progress write lost a race, retrying",
			"enrollment_id", enrollmentID,
			"lecture_index", index,
			"try", try+1,
			"error", err,
		)
	}
	return domainagg.ApplyLectureProgressResult{}, learning.NewUpstreamError("progress.save", lastErr)
}
