package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

func (e *Evaluator) evaluateFormal(ctx context.Context, examID string, in EvaluationInput) (Result, error) {
	examID = strings.TrimSpace(examID)
	if examID == "" {
		return Result{}, learning.NewNotFoundError("exam", "")
	}
	if e.exams == nil {
		return Result{}, learning.NewUpstreamError("exam.submit", fmt.Errorf("exam service not configured"))
	}
	raw, err := e.exams.SubmitExamAttempt(ctx, examID, in.LearnerID, in.Answers)
	if errors.Is(err, learning.ErrNotFound) {
		return Result{}, err
	}
	if err != nil {
		return Result{}, learning.NewUpstreamError("exam.submit", err)
	}
	res, err := mapExamResult(raw)
	if err != nil {
		return Result{}, learning.NewUpstreamError("exam.submit", err)
	}
	e.log.Debug("formal exam graded",
		"exam_id", examID,
		"score", res.Score,
		"passed", res.Passed,
	)
	return res, nil
}

// mapExamResult checks the exam service response before it can touch progress.
func mapExamResult(raw *learning.ExamAttemptResult) (Result, error) {
	if raw == nil {
		return Result{}, fmt.Errorf("empty exam result")
	}
	if raw.Score < 0 || raw.Score > 100 {
		return Result{}, fmt.Errorf("exam score out of range: %d", raw.Score)
	}
	if raw.CorrectAnswers < 0 || raw.TotalQuestions < 0 {
		return Result{}, fmt.Errorf("negative exam counts: correct=%d total=%d", raw.CorrectAnswers, raw.TotalQuestions)
	}
	if raw.CorrectAnswers > raw.TotalQuestions {
		return Result{}, fmt.Errorf("exam correct count %d exceeds total %d", raw.CorrectAnswers, raw.TotalQuestions)
	}
	return Result{
		Score:          raw.Score,
		CorrectCount:   raw.CorrectAnswers,
		TotalQuestions: raw.TotalQuestions,
		Passed:         raw.Passed,
		Source:         learning.AttemptSourceFormal,
	}, nil
}

type FormalExamInfo struct {
	Exam         learning.FormalExam `json:"exam"`
	AttemptsUsed int                 `json:"attempts_used"`
	// AttemptsLeft is nil when the exam has no attempt limit.
	AttemptsLeft *int `json:"attempts_left,omitempty"`
}

// DescribeFormal returns exam metadata and the learner's attempt usage.
func (e *Evaluator) DescribeFormal(ctx context.Context, examID string, learnerID uuid.UUID) (FormalExamInfo, error) {
	examID = strings.TrimSpace(examID)
	if examID == "" {
		return FormalExamInfo{}, learning.NewNotFoundError("exam", "")
	}
	if e.exams == nil {
		return FormalExamInfo{}, learning.NewUpstreamError("exam.get", fmt.Errorf("exam service not configured"))
	}
	exam, err := e.exams.GetExam(ctx, examID)
	if errors.Is(err, learning.ErrNotFound) {
		return FormalExamInfo{}, err
	}
	if err != nil {
		return FormalExamInfo{}, learning.NewUpstreamError("exam.get", err)
	}
	if exam == nil {
		return FormalExamInfo{}, learning.NewNotFoundError("exam", examID)
	}
	used, err := e.exams.GetAttemptCount(ctx, examID, learnerID)
	if err != nil {
		return FormalExamInfo{}, learning.NewUpstreamError("exam.attempt_count", err)
	}
	if used < 0 {
		return FormalExamInfo{}, learning.NewUpstreamError("exam.attempt_count", fmt.Errorf("negative attempt count %d", used))
	}
	info := FormalExamInfo{Exam: *exam, AttemptsUsed: used}
	if exam.MaxAttempts > 0 {
		left := exam.MaxAttempts - used
		if left < 0 {
			left = 0
		}
		info.AttemptsLeft = &left
	}
	return info, nil
}
