package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type fakeExams struct {
	exam     *learning.FormalExam
	result   *learning.ExamAttemptResult
	count    int
	err      error
	submits  int
	lastID   string
	lastSent []string
}

func (f *fakeExams) GetExam(_ context.Context, examID string) (*learning.FormalExam, error) {
	f.lastID = examID
	return f.exam, f.err
}

func (f *fakeExams) SubmitExamAttempt(_ context.Context, examID string, _ uuid.UUID, answers []string) (*learning.ExamAttemptResult, error) {
	f.submits++
	f.lastID = examID
	f.lastSent = answers
	return f.result, f.err
}

func (f *fakeExams) GetAttemptCount(context.Context, string, uuid.UUID) (int, error) {
	return f.count, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func inlineLecture(passing *int) learning.Lecture {
	return learning.Lecture{
		Index:          0,
		AssessmentKind: learning.AssessmentInline,
		PassingScore:   passing,
		Questions: []learning.QuizQuestion{
			{Index: 0, Text: "q1", Type: learning.QuestionMCQ, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{Index: 1, Text: "q2", Type: learning.QuestionMCQ, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{Index: 2, Text: "q3", Type: learning.QuestionMCQ, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{Index: 3, Text: "q4", Type: learning.QuestionMCQ, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{Index: 4, Text: "q5", Type: learning.QuestionShort},
		},
	}
}

func TestEvaluate_InlineUsesLecturePassingScore(t *testing.T) {
	ev := NewEvaluator(DefaultPolicy(), nil, testLogger(t))
	answers := []string{"B", "B", "B", "A", ""} // 3/5 = 60

	res, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: inlineLecture(nil), Answers: answers})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Score != 60 || !res.Passed {
		t.Fatalf("default threshold 60: %+v", res)
	}

	seventy := 70
	res, err = ev.Evaluate(context.Background(), EvaluationInput{Lecture: inlineLecture(&seventy), Answers: answers})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Passed {
		t.Fatalf("lecture threshold 70 should fail a 60: %+v", res)
	}
}

func TestEvaluate_InlineQuestionsGradedInIndexOrder(t *testing.T) {
	l := inlineLecture(nil)
	l.Questions[0], l.Questions[4] = l.Questions[4], l.Questions[0]
	ev := NewEvaluator(DefaultPolicy(), nil, testLogger(t))
	res, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: l, Answers: []string{"B", "B", "B", "B", "text"}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.CorrectCount != 5 {
		t.Fatalf("want all correct once sorted, got %+v", res)
	}
}

func TestEvaluate_NoAssessment(t *testing.T) {
	ev := NewEvaluator(DefaultPolicy(), nil, testLogger(t))
	_, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: learning.Lecture{AssessmentKind: learning.AssessmentNone}})
	if !errors.Is(err, ErrNoAssessment) {
		t.Fatalf("want ErrNoAssessment, got %v", err)
	}
}

func TestEvaluate_FormalMapsExamResult(t *testing.T) {
	exams := &fakeExams{result: &learning.ExamAttemptResult{Score: 85, Passed: true, CorrectAnswers: 17, TotalQuestions: 20}}
	ev := NewEvaluator(DefaultPolicy(), exams, testLogger(t))
	lecture := learning.Lecture{AssessmentKind: learning.AssessmentFormal, FormalExamID: "exam-42"}

	res, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: lecture, LearnerID: uuid.New(), Answers: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Score != 85 || !res.Passed || res.CorrectCount != 17 || res.TotalQuestions != 20 || res.Source != learning.AttemptSourceFormal {
		t.Fatalf("mapped result: %+v", res)
	}
	if exams.lastID != "exam-42" || len(exams.lastSent) != 2 {
		t.Fatalf("exam call: id=%s answers=%v", exams.lastID, exams.lastSent)
	}
}

func TestEvaluate_FormalFailuresAreUpstream(t *testing.T) {
	cases := []struct {
		name  string
		exams *fakeExams
	}{
		{"transport", &fakeExams{err: errors.New("connection refused")}},
		{"nil result", &fakeExams{}},
		{"score range", &fakeExams{result: &learning.ExamAttemptResult{Score: 140, TotalQuestions: 1}}},
		{"negative", &fakeExams{result: &learning.ExamAttemptResult{Score: 10, CorrectAnswers: -1, TotalQuestions: 3}}},
		{"correct exceeds total", &fakeExams{result: &learning.ExamAttemptResult{Score: 10, CorrectAnswers: 4, TotalQuestions: 3}}},
	}
	lecture := learning.Lecture{AssessmentKind: learning.AssessmentFormal, FormalExamID: "exam-1"}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := NewEvaluator(DefaultPolicy(), tc.exams, testLogger(t))
			_, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: lecture})
			if !errors.Is(err, learning.ErrUpstream) {
				t.Fatalf("want upstream error, got %v", err)
			}
		})
	}
}

func TestEvaluate_FormalUnknownExamIsNotFound(t *testing.T) {
	exams := &fakeExams{err: learning.NewNotFoundError("exam", "exam-9")}
	ev := NewEvaluator(DefaultPolicy(), exams, testLogger(t))
	_, err := ev.Evaluate(context.Background(), EvaluationInput{Lecture: learning.Lecture{AssessmentKind: learning.AssessmentFormal, FormalExamID: "exam-9"}})
	if !errors.Is(err, learning.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestDescribeFormal(t *testing.T) {
	exams := &fakeExams{
		exam:  &learning.FormalExam{ID: "exam-1", Title: "Midterm", MaxAttempts: 3, PassingScore: 70},
		count: 2,
	}
	ev := NewEvaluator(DefaultPolicy(), exams, testLogger(t))
	info, err := ev.DescribeFormal(context.Background(), "exam-1", uuid.New())
	if err != nil {
		t.Fatalf("DescribeFormal: %v", err)
	}
	if info.AttemptsUsed != 2 || info.AttemptsLeft == nil || *info.AttemptsLeft != 1 {
		t.Fatalf("attempts: %+v", info)
	}

	exams.exam.MaxAttempts = 0
	info, err = ev.DescribeFormal(context.Background(), "exam-1", uuid.New())
	if err != nil {
		t.Fatalf("DescribeFormal unlimited: %v", err)
	}
	if info.AttemptsLeft != nil {
		t.Fatalf("unlimited exam should have no remaining count: %+v", info)
	}
}
