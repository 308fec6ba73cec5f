package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/modules/progression"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/keylock"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// ViewEvent reports time spent on a lecture's content.
type ViewEvent struct {
	TimeSpent   time.Duration
	FullyViewed bool
}

type ViewResult struct {
	Denied   bool                      `json:"denied,omitempty"`
	Reason   learning.DenialReason     `json:"reason,omitempty"`
	Progress *learning.LectureProgress `json:"progress,omitempty"`
	Status   learning.LectureStatus    `json:"status,omitempty"`
}

type ProgressService interface {
	RecordView(ctx context.Context, learnerID, courseID uuid.UUID, index int, ev ViewEvent) (ViewResult, error)
}

type progressService struct {
	log       *logger.Logger
	snapshots snapshotLoader
	writer    progressWriter
	metrics   *observability.Metrics
}

func NewProgressService(
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.LectureProgressRepo,
	agg domainagg.LectureProgressAggregate,
	locker keylock.Locker,
	metrics *observability.Metrics,
) ProgressService {
	log := baseLog.With("service", "ProgressService")
	if locker == nil {
		locker = keylock.NewLocal()
	}
	return &progressService{
		log:       log,
		snapshots: snapshotLoader{courses: courses, enrollments: enrollments},
		writer:    progressWriter{log: log, progress: progress, agg: agg, locker: locker},
		metrics:   metrics,
	}
}

// RecordView accumulates viewing time. Content counts as completed once fully
// viewed, or on the first view of a lecture that has no content items.
func (s *progressService) RecordView(ctx context.Context, learnerID, courseID uuid.UUID, index int, ev ViewEvent) (ViewResult, error) {
	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return ViewResult{}, err
	}
	view, err := viewDecision(snap, index)
	if err != nil {
		return ViewResult{}, err
	}
	s.metrics.IncGateDecision("view", view.Allowed, string(view.Reason))
	if view.Denied {
		return ViewResult{Denied: true, Reason: view.Reason}, nil
	}

	if ev.TimeSpent < 0 {
		return ViewResult{}, learning.NewValidationError("time_spent_negative", "time_spent_seconds", "time spent must be >= 0")
	}
	lecture := snap.Course.Lectures[index]
	done := ev.FullyViewed || !lecture.HasContent()

	unlock, err := s.writer.lock(ctx, learnerID, courseID, index)
	if err != nil {
		return ViewResult{}, err
	}
	defer unlock()

	written, err := s.writer.apply(ctx, snap.Enrollment.ID, index, learning.ProgressDelta{
		ContentViewed:    done,
		Completed:        done,
		TimeSpentSeconds: int(ev.TimeSpent / time.Second),
	}, nil)
	if err != nil {
		return ViewResult{}, err
	}
	s.metrics.IncViewEvent(written.Progress.Completed)

	status, err := progression.Status(snap.Course, withProgress(snap.Enrollment, written.Progress), index)
	if err != nil {
		return ViewResult{}, err
	}
	s.log.Debug("lecture view recorded",
		"learner_id", learnerID,
		"course_id", courseID,
		"lecture_index", index,
		"completed", written.Progress.Completed,
	)
	p := written.Progress
	return ViewResult{Progress: &p, Status: status}, nil
}
