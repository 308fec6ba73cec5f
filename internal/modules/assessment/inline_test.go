package assessment

import (
	"testing"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

func mcq(correct string, options ...string) learning.QuizQuestion {
	return learning.QuizQuestion{Text: "pick one", Type: learning.QuestionMCQ, Options: options, CorrectAnswer: correct, Points: 1}
}

func short(correct string) learning.QuizQuestion {
	return learning.QuizQuestion{Text: "explain", Type: learning.QuestionShort, CorrectAnswer: correct, Points: 1}
}

func TestScoreInline_MCQExactMatch(t *testing.T) {
	quiz := learning.InlineQuiz{Questions: []learning.QuizQuestion{mcq("B", "A", "B")}}

	right := ScoreInline(quiz, []string{"B"}, 60, true)
	if right.CorrectCount != 1 || right.TotalQuestions != 1 || right.Score != 100 || !right.Passed {
		t.Fatalf("answer B: %+v", right)
	}
	wrong := ScoreInline(quiz, []string{"A"}, 60, true)
	if wrong.CorrectCount != 0 || wrong.Score != 0 || wrong.Passed {
		t.Fatalf("answer A: %+v", wrong)
	}
	if IsCorrect(mcq("B", "A", "B"), " B", true) || IsCorrect(mcq("B", "A", "B"), "b", true) {
		t.Fatalf("mcq must match exactly")
	}
}

func TestScoreInline_ShortAnswerLeniency(t *testing.T) {
	q := short("photosynthesis")
	cases := []struct {
		answer string
		want   bool
	}{
		{"completely wrong", true},
		{"photosynthesis", true},
		{"   ", false},
		{"", false},
		{"\t\n", false},
	}
	for _, tc := range cases {
		if got := IsCorrect(q, tc.answer, true); got != tc.want {
			t.Fatalf("lenient %q: want=%v got=%v", tc.answer, tc.want, got)
		}
	}

	if IsCorrect(q, "completely wrong", false) {
		t.Fatalf("strict mode should reject a wrong answer")
	}
	if !IsCorrect(q, "  Photosynthesis ", false) {
		t.Fatalf("strict mode should accept a trimmed case-insensitive match")
	}
}

func TestScoreInline_RoundingAndThreshold(t *testing.T) {
	quiz := learning.InlineQuiz{Questions: []learning.QuizQuestion{
		mcq("B", "A", "B"), mcq("B", "A", "B"), mcq("B", "A", "B"),
	}}
	// 2 of 3 is 66.67 and rounds to 67.
	res := ScoreInline(quiz, []string{"B", "B", "A"}, 67, true)
	if res.Score != 67 || !res.Passed {
		t.Fatalf("2/3: %+v", res)
	}
	res = ScoreInline(quiz, []string{"B", "A", "A"}, 34, true)
	if res.Score != 33 || res.Passed {
		t.Fatalf("1/3: %+v", res)
	}
}

func TestScoreInline_MissingAnswersAreIncorrect(t *testing.T) {
	quiz := learning.InlineQuiz{Questions: []learning.QuizQuestion{
		mcq("B", "A", "B"), short("x"), short("y"), mcq("A", "A", "B"), short("z"),
	}}
	res := ScoreInline(quiz, []string{"B", "some text"}, 60, true)
	if res.CorrectCount != 2 || res.TotalQuestions != 5 || res.Score != 40 || res.Passed {
		t.Fatalf("partial answers: %+v", res)
	}
	if res.Source != learning.AttemptSourceInline {
		t.Fatalf("source: want=inline got=%s", res.Source)
	}
}

func TestScoreInline_EmptyQuizNeverPasses(t *testing.T) {
	res := ScoreInline(learning.InlineQuiz{}, nil, 0, true)
	if res.Score != 0 || res.Passed {
		t.Fatalf("empty quiz: %+v", res)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct{ c, n, want int }{
		{0, 0, 0}, {0, 5, 0}, {2, 5, 40}, {4, 5, 80}, {1, 8, 13}, {5, 5, 100},
	}
	for _, tc := range cases {
		if got := Percent(tc.c, tc.n); got != tc.want {
			t.Fatalf("Percent(%d,%d): want=%d got=%d", tc.c, tc.n, tc.want, got)
		}
	}
}
