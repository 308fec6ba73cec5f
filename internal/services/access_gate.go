package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/yungbote/lecturegate-backend/internal/data/repos"
	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/modules/assessment"
	"github.com/yungbote/lecturegate-backend/internal/modules/progression"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturegate-backend/internal/platform/keylock"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// ViewDecision is Allowed with the derived status, or Denied with a reason.
type ViewDecision struct {
	Allowed bool                   `json:"allowed"`
	Denied  bool                   `json:"denied,omitempty"`
	Reason  learning.DenialReason  `json:"reason,omitempty"`
	Status  learning.LectureStatus `json:"status"`
}

type SubmissionDecision struct {
	Denied   bool                      `json:"denied,omitempty"`
	Reason   learning.DenialReason     `json:"reason,omitempty"`
	Attempt  *learning.QuizAttempt     `json:"attempt,omitempty"`
	Progress *learning.LectureProgress `json:"progress,omitempty"`
	// Status is the lecture's status after the attempt was recorded.
	Status       learning.LectureStatus `json:"status,omitempty"`
	NextUnlocked bool                   `json:"next_unlocked"`
}

// CourseStatus is every lecture's derived status plus the lecture the learner
// should resume at. Current is nil when nothing is accessible.
type CourseStatus struct {
	Lectures []learning.LectureState `json:"lectures"`
	Current  *int                    `json:"current"`
}

type AccessGate interface {
	Statuses(ctx context.Context, learnerID, courseID uuid.UUID) (CourseStatus, error)
	AuthorizeView(ctx context.Context, learnerID, courseID uuid.UUID, index int) (ViewDecision, error)
	AuthorizeSubmission(ctx context.Context, learnerID, courseID uuid.UUID, index int, answers []string) (SubmissionDecision, error)
	ListAttempts(ctx context.Context, learnerID, courseID uuid.UUID, index int) ([]*learning.QuizAttempt, error)
	DescribeExam(ctx context.Context, learnerID, courseID uuid.UUID, index int) (assessment.FormalExamInfo, error)
}

type accessGate struct {
	log       *logger.Logger
	snapshots snapshotLoader
	attempts  repos.QuizAttemptRepo
	writer    progressWriter
	evaluator *assessment.Evaluator
	metrics   *observability.Metrics
}

func NewAccessGate(
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.LectureProgressRepo,
	attempts repos.QuizAttemptRepo,
	agg domainagg.LectureProgressAggregate,
	locker keylock.Locker,
	evaluator *assessment.Evaluator,
	metrics *observability.Metrics,
) AccessGate {
	log := baseLog.With("service", "AccessGate")
	if locker == nil {
		locker = keylock.NewLocal()
	}
	return &accessGate{
		log:       log,
		snapshots: snapshotLoader{courses: courses, enrollments: enrollments},
		attempts:  attempts,
		writer:    progressWriter{log: log, progress: progress, agg: agg, locker: locker},
		evaluator: evaluator,
		metrics:   metrics,
	}
}

func (s *accessGate) Statuses(ctx context.Context, learnerID, courseID uuid.UUID) (CourseStatus, error) {
	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return CourseStatus{}, err
	}
	states, err := progression.Statuses(snap.Course, snap.Enrollment)
	if err != nil {
		return CourseStatus{}, err
	}
	out := CourseStatus{Lectures: states}
	if i, ok := progression.Current(snap.Course, snap.Enrollment); ok {
		out.Current = &i
	}
	return out, nil
}

func (s *accessGate) AuthorizeView(ctx context.Context, learnerID, courseID uuid.UUID, index int) (ViewDecision, error) {
	ctx, span := observability.StartSpan(ctx, "AccessGate.AuthorizeView", attribute.Int("lecture.index", index))
	defer span.End()

	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return ViewDecision{}, err
	}
	d, err := viewDecision(snap, index)
	if err != nil {
		return ViewDecision{}, err
	}
	s.metrics.IncGateDecision("view", d.Allowed, string(d.Reason))
	return d, nil
}

func viewDecision(snap snapshot, index int) (ViewDecision, error) {
	status, err := progression.Status(snap.Course, snap.Enrollment, index)
	if err != nil {
		return ViewDecision{}, err
	}
	if snap.Enrollment == nil {
		return ViewDecision{Denied: true, Reason: learning.DenyNotEnrolled, Status: status}, nil
	}
	if !status.Accessible() {
		return ViewDecision{Denied: true, Reason: learning.DenyLocked, Status: status}, nil
	}
	return ViewDecision{Allowed: true, Status: status}, nil
}

func (s *accessGate) AuthorizeSubmission(ctx context.Context, learnerID, courseID uuid.UUID, index int, answers []string) (SubmissionDecision, error) {
	ctx, span := observability.StartSpan(ctx, "AccessGate.AuthorizeSubmission", attribute.Int("lecture.index", index))
	defer span.End()

	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return SubmissionDecision{}, err
	}
	view, err := viewDecision(snap, index)
	if err != nil {
		return SubmissionDecision{}, err
	}
	if view.Denied {
		s.metrics.IncGateDecision("submit", false, string(view.Reason))
		return SubmissionDecision{Denied: true, Reason: view.Reason}, nil
	}
	lecture := snap.Course.Lectures[index]
	if !lecture.HasAssessment() {
		s.metrics.IncGateDecision("submit", false, string(learning.DenyNoAssessment))
		return SubmissionDecision{Denied: true, Reason: learning.DenyNoAssessment}, nil
	}
	s.metrics.IncGateDecision("submit", true, "")

	if answers == nil {
		answers = []string{}
	}

	unlock, err := s.writer.lock(ctx, learnerID, courseID, index)
	if err != nil {
		return SubmissionDecision{}, err
	}
	defer unlock()

	res, err := s.evaluator.Evaluate(ctx, assessment.EvaluationInput{
		Lecture:   lecture,
		LearnerID: learnerID,
		Answers:   answers,
	})
	if err != nil {
		if errors.Is(err, learning.ErrNotFound) || errors.Is(err, learning.ErrUpstream) {
			return SubmissionDecision{}, err
		}
		return SubmissionDecision{}, learning.NewUpstreamError("assessment.evaluate", err)
	}

	score := res.Score
	attempt := &learning.QuizAttempt{
		LearnerID:      learnerID,
		CourseID:       courseID,
		Source:         res.Source,
		Answers:        datatypes.JSONSlice[string](answers),
		Score:          res.Score,
		CorrectCount:   res.CorrectCount,
		TotalQuestions: res.TotalQuestions,
		Passed:         res.Passed,
		SubmittedAt:    time.Now().UTC(),
	}
	written, err := s.writer.apply(ctx, snap.Enrollment.ID, index, learning.ProgressDelta{
		Score:      &score,
		QuizPassed: res.Passed,
	}, attempt)
	if err != nil {
		return SubmissionDecision{}, err
	}
	s.metrics.ObserveSubmission(string(res.Source), res.Passed, res.Score)

	after := withProgress(snap.Enrollment, written.Progress)
	status, err := progression.Status(snap.Course, after, index)
	if err != nil {
		return SubmissionDecision{}, err
	}
	s.log.Info("assessment submission recorded",
		"learner_id", learnerID,
		"course_id", courseID,
		"lecture_index", index,
		"source", res.Source,
		"score", res.Score,
		"passed", res.Passed,
		"quiz_passed", written.Progress.QuizPassed,
	)
	progress := written.Progress
	return SubmissionDecision{
		Attempt:      written.Attempt,
		Progress:     &progress,
		Status:       status,
		NextUnlocked: progression.Advance(snap.Course, after, index),
	}, nil
}

func (s *accessGate) ListAttempts(ctx context.Context, learnerID, courseID uuid.UUID, index int) ([]*learning.QuizAttempt, error) {
	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(snap.Course.Lectures) {
		return nil, learning.NewNotFoundError("lecture", strconv.Itoa(index))
	}
	if snap.Enrollment == nil {
		return []*learning.QuizAttempt{}, nil
	}
	rows, err := s.attempts.ListByEnrollmentLecture(dbctx.Context{Ctx: ctx}, snap.Enrollment.ID, index)
	if err != nil {
		return nil, learning.NewUpstreamError("attempts.list", err)
	}
	if rows == nil {
		rows = []*learning.QuizAttempt{}
	}
	return rows, nil
}

// DescribeExam returns formal exam metadata and attempt usage for an accessible
// lecture. Lectures without a formal exam are NotFound.
func (s *accessGate) DescribeExam(ctx context.Context, learnerID, courseID uuid.UUID, index int) (assessment.FormalExamInfo, error) {
	snap, err := s.snapshots.load(ctx, learnerID, courseID)
	if err != nil {
		return assessment.FormalExamInfo{}, err
	}
	if _, err := progression.Status(snap.Course, snap.Enrollment, index); err != nil {
		return assessment.FormalExamInfo{}, err
	}
	a := snap.Course.Lectures[index].Assessment()
	if a.Kind != learning.AssessmentFormal {
		return assessment.FormalExamInfo{}, learning.NewNotFoundError("exam", "lecture "+strconv.Itoa(index))
	}
	return s.evaluator.DescribeFormal(ctx, a.ExamID, learnerID)
}
