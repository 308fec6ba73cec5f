package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

var LectureProgressAggregateContract = Contract{
	Name:             "Learning.LectureProgressAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns the per-lecture progress row and the attempt that produced it. " +
		"Completion flags never regress and writes are guarded by the row version.",
}

// LectureProgressAggregate owns monotonic progress writes.
//
// Failures are *aggregates.Error with codes:
// CodeValidation, CodeConflict (lost version race), CodeInvariantViolation (downgrade),
// CodeRetryable, CodeInternal.
type LectureProgressAggregate interface {
	Aggregate

	// Apply writes Next for (EnrollmentID, LectureIndex) if the stored version still
	// equals ExpectedVersion, and records Attempt in the same transaction.
	Apply(ctx context.Context, in ApplyLectureProgressInput) (ApplyLectureProgressResult, error)
}

type ApplyLectureProgressInput struct {
	EnrollmentID uuid.UUID
	LectureIndex int
	// ExpectedVersion is 0 when no row exists yet.
	ExpectedVersion int
	Next            learning.LectureProgress
	Attempt         *learning.QuizAttempt
}

type ApplyLectureProgressResult struct {
	Progress learning.LectureProgress
	Attempt  *learning.QuizAttempt
	Created  bool
}
