package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/lecturegate-backend/internal/domain/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps the domain error taxonomy onto HTTP. Unknown errors become a
// 500 carrying fallbackCode.
func FromError(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve *learning.ValidationError
	if errors.As(err, &ve) {
		return New(http.StatusUnprocessableEntity, ve.Code, err)
	}
	switch {
	case errors.Is(err, learning.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, learning.ErrUpstream):
		return New(http.StatusBadGateway, "upstream_failure", err)
	case domainagg.IsCode(err, domainagg.CodeConflict):
		return New(http.StatusConflict, "conflict", err)
	case domainagg.IsCode(err, domainagg.CodeValidation), domainagg.IsCode(err, domainagg.CodeInvariantViolation):
		return New(http.StatusUnprocessableEntity, string(domainagg.CodeOf(err)), err)
	}
	return New(http.StatusInternalServerError, fallbackCode, err)
}

// DenialStatus is the HTTP status for a typed gate denial.
func DenialStatus(reason learning.DenialReason) int {
	if reason == learning.DenyNoAssessment {
		return http.StatusConflict
	}
	return http.StatusForbidden
}
