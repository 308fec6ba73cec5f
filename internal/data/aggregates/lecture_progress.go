package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
)

type LectureProgressAggregateDeps struct {
	Base BaseDeps

	Progress repos.LectureProgressRepo
	Attempts repos.QuizAttemptRepo
}

type lectureProgressAggregate struct {
	deps LectureProgressAggregateDeps
}

func NewLectureProgressAggregate(deps LectureProgressAggregateDeps) domainagg.LectureProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &lectureProgressAggregate{deps: deps}
}

func (a *lectureProgressAggregate) Contract() domainagg.Contract {
	return domainagg.LectureProgressAggregateContract
}

func (a *lectureProgressAggregate) Apply(ctx context.Context, in domainagg.ApplyLectureProgressInput) (domainagg.ApplyLectureProgressResult, error) {
	const op = "Learning.LectureProgress.Apply"
	var out domainagg.ApplyLectureProgressResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if in.EnrollmentID == uuid.Nil {
			return ValidationError("enrollment id is required")
		}
		if in.LectureIndex < 0 {
			return ValidationError("lecture index must be >= 0")
		}
		if in.ExpectedVersion < 0 {
			return ValidationError("expected version must be >= 0")
		}
		next := in.Next
		if next.TimeSpentSeconds < 0 || next.Attempts < 0 {
			return ValidationError("progress counters must be >= 0")
		}
		next.EnrollmentID = in.EnrollmentID
		next.LectureIndex = in.LectureIndex

		current, err := a.deps.Progress.GetByKey(dbc, in.EnrollmentID, in.LectureIndex)
		if err != nil {
			return err
		}

		if current == nil {
			if in.ExpectedVersion != 0 {
				return ConflictError("progress row missing at expected version")
			}
			next.ID = uuid.Nil
			next.Version = 1
			// A concurrent first write loses on the unique key and maps to a conflict.
			if err := a.deps.Progress.Create(dbc, &next); err != nil {
				return err
			}
			out.Created = true
		} else {
			if err := RequireVersionMatch(current.Version, in.ExpectedVersion); err != nil {
				return err
			}
			if err := RequireNoDowngrade(current.Downgrades(next)); err != nil {
				return err
			}
			now := time.Now().UTC()
			ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, learning.LectureProgress{}.TableName(), current.ID, in.ExpectedVersion, map[string]any{
				"content_viewed":     next.ContentViewed,
				"time_spent_seconds": next.TimeSpentSeconds,
				"completed":          next.Completed,
				"quiz_passed":        next.QuizPassed,
				"last_score":         next.LastScore,
				"attempts":           next.Attempts,
				"version":            in.ExpectedVersion + 1,
				"updated_at":         now,
			})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "lecture progress changed concurrently"); err != nil {
				return err
			}
			next.ID = current.ID
			next.CreatedAt = current.CreatedAt
			next.UpdatedAt = now
			next.Version = in.ExpectedVersion + 1
		}

		if in.Attempt != nil {
			attempt := *in.Attempt
			attempt.EnrollmentID = in.EnrollmentID
			attempt.LectureIndex = in.LectureIndex
			if err := a.deps.Attempts.Create(dbc, &attempt); err != nil {
				return err
			}
			out.Attempt = &attempt
		}
		out.Progress = next
		return nil
	})
	if err != nil {
		return domainagg.ApplyLectureProgressResult{}, err
	}
	return out, nil
}
