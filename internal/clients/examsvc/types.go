package examsvc

import "github.com/google/uuid"

type submitAttemptRequest struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Answers   []string  `json:"answers"`
}

type submitAttemptResponse struct {
	Score          *int  `json:"score"`
	Passed         *bool `json:"passed"`
	CorrectAnswers *int  `json:"correct_answers"`
	TotalQuestions *int  `json:"total_questions"`
}

type attemptCountResponse struct {
	Count *int `json:"count"`
}
