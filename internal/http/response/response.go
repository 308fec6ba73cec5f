package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// DeniedPayload is returned for typed gate denials.
type DeniedPayload struct {
	Allowed bool                   `json:"allowed"`
	Denied  bool                   `json:"denied"`
	Reason  learning.DenialReason  `json:"reason"`
	Status  learning.LectureStatus `json:"status,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondValidation writes the flat {error: code, field, message} body.
func RespondValidation(c *gin.Context, ve *learning.ValidationError) {
	c.JSON(http.StatusUnprocessableEntity, ve)
}

func RespondDenied(c *gin.Context, status int, reason learning.DenialReason, lectureStatus learning.LectureStatus) {
	c.JSON(status, DeniedPayload{Denied: true, Reason: reason, Status: lectureStatus})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
