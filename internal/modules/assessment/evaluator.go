// Package assessment scores inline quizzes, adapts formal exam results from
// the external exam service, and validates authored assessments.
package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

var ErrNoAssessment = errors.New("lecture has no assessment")

// ExamService is the slice of the external exam service the evaluator needs.
type ExamService interface {
	GetExam(ctx context.Context, examID string) (*learning.FormalExam, error)
	SubmitExamAttempt(ctx context.Context, examID string, learnerID uuid.UUID, answers []string) (*learning.ExamAttemptResult, error)
	GetAttemptCount(ctx context.Context, examID string, learnerID uuid.UUID) (int, error)
}

type EvaluationInput struct {
	Lecture   learning.Lecture
	LearnerID uuid.UUID
	Answers   []string
}

type Result struct {
	Score          int                    `json:"score"`
	CorrectCount   int                    `json:"correct_count"`
	TotalQuestions int                    `json:"total_questions"`
	Passed         bool                   `json:"passed"`
	Source         learning.AttemptSource `json:"source"`
}

type Evaluator struct {
	policy Policy
	exams  ExamService
	log    *logger.Logger
}

func NewEvaluator(policy Policy, exams ExamService, baseLog *logger.Logger) *Evaluator {
	return &Evaluator{
		policy: policy,
		exams:  exams,
		log:    baseLog.With("service", "AssessmentEvaluator"),
	}
}

func (e *Evaluator) Policy() Policy { return e.policy }

// Evaluate dispatches on the lecture's assessment kind.
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) (Result, error) {
	a := in.Lecture.Assessment()
	switch a.Kind {
	case learning.AssessmentInline:
		res := ScoreInline(*a.Inline, in.Answers, e.policy.PassingScore(in.Lecture), e.policy.LenientShortAnswers)
		e.log.Debug("inline quiz scored",
			"lecture_index", in.Lecture.Index,
			"score", res.Score,
			"passed", res.Passed,
		)
		return res, nil
	case learning.AssessmentFormal:
		return e.evaluateFormal(ctx, a.ExamID, in)
	default:
		return Result{}, ErrNoAssessment
	}
}
