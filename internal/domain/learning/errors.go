package learning

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream failure")
)

// ValidationError is an authoring-time structural violation.
type ValidationError struct {
	Code    string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Code)
	}
	return e.Code
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: strings.TrimSpace(field), Message: strings.TrimSpace(message)}
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// UpstreamError wraps a failure of the exam service or of the progress store.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Op + ": upstream failure"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// DenialReason explains why the access gate refused a request.
type DenialReason string

const (
	DenyNotEnrolled  DenialReason = "NotEnrolled"
	DenyLocked       DenialReason = "Locked"
	DenyNoAssessment DenialReason = "NoAssessment"
)
