package assessment

import (
	"math"
	"strings"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

// ScoreInline grades answers positionally against quiz. A missing answer is
// incorrect. Score is the rounded percentage of correct questions.
func ScoreInline(quiz learning.InlineQuiz, answers []string, passingScore int, lenientShort bool) Result {
	total := len(quiz.Questions)
	correct := 0
	for i, q := range quiz.Questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if IsCorrect(q, answer, lenientShort) {
			correct++
		}
	}
	score := Percent(correct, total)
	return Result{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Passed:         total > 0 && score >= passingScore,
		Source:         learning.AttemptSourceInline,
	}
}

// IsCorrect grades one answer. MCQ answers must equal the correct answer
// exactly. Short answers only need to be non-blank when lenient.
func IsCorrect(q learning.QuizQuestion, answer string, lenientShort bool) bool {
	switch q.Type {
	case learning.QuestionMCQ:
		return answer == q.CorrectAnswer
	case learning.QuestionShort:
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			return false
		}
		if lenientShort {
			return true
		}
		return strings.EqualFold(trimmed, strings.TrimSpace(q.CorrectAnswer))
	default:
		return false
	}
}

func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
