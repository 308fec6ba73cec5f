package assessment

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

// MinInlineQuestions is the smallest inline quiz that may be saved or enabled.
const MinInlineQuestions = 5

// Validation error codes.
const (
	CodeMinQuestions        = "min_5"
	CodeQuestionTextMissing = "question_text_missing"
	CodeQuestionTypeInvalid = "question_type_invalid"
	CodeMCQMinOptions       = "mcq_min_options"
	CodeMCQEmptyOption      = "mcq_empty_option"
	CodeMCQNoCorrect        = "mcq_no_correct"
	CodeMCQMultipleCorrect  = "mcq_multiple_correct"
	CodePointsNegative      = "points_negative"

	CodeAssessmentConflict    = "assessment_conflict"
	CodeAssessmentKindInvalid = "assessment_kind_invalid"
	CodeExamRefMissing        = "exam_ref_missing"
	CodeExamRequiredMissing   = "exam_required_missing"
	CodePassingScoreRange     = "passing_score_range"
	CodeCourseCodeInvalid     = "course_code_invalid"
	CodeLecturesMissing       = "lectures_missing"
	CodeLectureTitleMissing   = "lecture_title_missing"
	CodeLectureCodeInvalid    = "lecture_code_invalid"
	CodeDuplicateLectureCode  = "duplicate_lecture_code"
	CodeLectureIndexInvalid   = "lecture_index_invalid"
)

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
		err := structs.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		if err != nil {
			panic("assessment: register nonblank validation: " + err.Error())
		}
	})
	return structs
}

// ValidateInlineQuiz checks the structural rules for an inline quiz.
func ValidateInlineQuiz(questions []learning.QuizQuestion) error {
	if len(questions) < MinInlineQuestions {
		return learning.NewValidationError(CodeMinQuestions, "questions",
			fmt.Sprintf("an inline quiz needs at least %d questions, got %d", MinInlineQuestions, len(questions)))
	}
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Text) == "" {
			return learning.NewValidationError(CodeQuestionTextMissing, field+".text", "question text is required")
		}
		if q.Points < 0 {
			return learning.NewValidationError(CodePointsNegative, field+".points", "points must be >= 0")
		}
		switch q.Type {
		case learning.QuestionShort:
		case learning.QuestionMCQ:
			if err := validateMCQ(field, q); err != nil {
				return err
			}
		default:
			return learning.NewValidationError(CodeQuestionTypeInvalid, field+".type",
				fmt.Sprintf("unsupported question type %q", q.Type))
		}
	}
	return nil
}

// validateMCQ identifies the correct option by value, not by a flag.
func validateMCQ(field string, q learning.QuizQuestion) error {
	if len(q.Options) < 2 {
		return learning.NewValidationError(CodeMCQMinOptions, field+".options", "mcq needs at least 2 options")
	}
	matches := 0
	for j, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return learning.NewValidationError(CodeMCQEmptyOption, fmt.Sprintf("%s.options[%d]", field, j), "option text is required")
		}
		if opt == q.CorrectAnswer {
			matches++
		}
	}
	switch {
	case matches == 0:
		return learning.NewValidationError(CodeMCQNoCorrect, field+".correct_answer", "correct answer must match one option")
	case matches > 1:
		return learning.NewValidationError(CodeMCQMultipleCorrect, field+".correct_answer", "correct answer matches more than one option")
	}
	return nil
}

// InferAssessmentKind fills an empty kind from what is attached. Conflicting
// attachments are left for ValidateExamAssignment to reject.
func InferAssessmentKind(l *learning.Lecture) {
	if l == nil || l.AssessmentKind != "" {
		return
	}
	hasExam := strings.TrimSpace(l.FormalExamID) != ""
	hasQuiz := len(l.Questions) > 0
	switch {
	case hasExam && !hasQuiz:
		l.AssessmentKind = learning.AssessmentFormal
	case hasQuiz && !hasExam:
		l.AssessmentKind = learning.AssessmentInline
	case !hasExam && !hasQuiz:
		l.AssessmentKind = learning.AssessmentNone
	}
}

// ValidateExamAssignment checks the assessment attached to one lecture.
func ValidateExamAssignment(l learning.Lecture) error {
	hasExam := strings.TrimSpace(l.FormalExamID) != ""
	hasQuiz := len(l.Questions) > 0
	if hasExam && hasQuiz {
		return learning.NewValidationError(CodeAssessmentConflict, "assessment", "a lecture holds either an inline quiz or a formal exam, not both")
	}
	if l.PassingScore != nil && (*l.PassingScore < 0 || *l.PassingScore > 100) {
		return learning.NewValidationError(CodePassingScoreRange, "passing_score",
			fmt.Sprintf("passing score must be within 0..100, got %d", *l.PassingScore))
	}

	switch l.AssessmentKind {
	case learning.AssessmentInline:
		return ValidateInlineQuiz(l.Questions)
	case learning.AssessmentFormal:
		if !hasExam {
			return learning.NewValidationError(CodeExamRefMissing, "formal_exam_id", "formal exam reference is required")
		}
	case learning.AssessmentNone, "":
		if hasExam || hasQuiz {
			return learning.NewValidationError(CodeAssessmentConflict, "assessment_kind", "assessment attached to a lecture marked none")
		}
		if l.ExamRequired {
			return learning.NewValidationError(CodeExamRequiredMissing, "exam_required", "exam required but no assessment attached")
		}
	default:
		return learning.NewValidationError(CodeAssessmentKindInvalid, "assessment_kind",
			fmt.Sprintf("unsupported assessment kind %q", l.AssessmentKind))
	}
	return nil
}

// ValidateCourse checks a whole course before it is persisted. It stops at the
// first violation.
func ValidateCourse(c learning.Course) error {
	v := fieldValidator()
	if err := v.Struct(c); err != nil {
		return mapFieldError("", err, map[string]string{"Code": CodeCourseCodeInvalid})
	}
	if len(c.Lectures) == 0 {
		return learning.NewValidationError(CodeLecturesMissing, "lectures", "a course needs at least one lecture")
	}

	seen := make(map[string]int, len(c.Lectures))
	for i, l := range c.Lectures {
		field := fmt.Sprintf("lectures[%d]", i)
		if l.Index != i {
			return learning.NewValidationError(CodeLectureIndexInvalid, field+".index",
				fmt.Sprintf("lecture index must be %d, got %d", i, l.Index))
		}
		if err := v.Struct(l); err != nil {
			return mapFieldError(field+".", err, map[string]string{
				"Title": CodeLectureTitleMissing,
				"Code":  CodeLectureCodeInvalid,
			})
		}
		if prev, dup := seen[l.Code]; dup {
			return learning.NewValidationError(CodeDuplicateLectureCode, field+".code",
				fmt.Sprintf("lecture code %s already used by lectures[%d]", l.Code, prev))
		}
		seen[l.Code] = i
		if err := ValidateExamAssignment(l); err != nil {
			var ve *learning.ValidationError
			if errors.As(err, &ve) {
				return learning.NewValidationError(ve.Code, field+"."+ve.Field, ve.Message)
			}
			return err
		}
	}
	return nil
}

func mapFieldError(prefix string, err error, codes map[string]string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	code, ok := codes[fe.StructField()]
	if !ok {
		code = strings.ToLower(fe.StructField()) + "_invalid"
	}
	return learning.NewValidationError(code, prefix+strings.ToLower(fe.Field()),
		fmt.Sprintf("failed %s rule", fe.Tag()))
}
