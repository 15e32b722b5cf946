package utils

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternalServer   = errors.New("internal server error")
	ErrMatchAbandoned   = errors.New("match abandoned")
	ErrTrapTableUnread  = errors.New("trap table unreadable")
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrConfigInvariant  = errors.New("config invariant violation")
	ErrAlreadySettled   = errors.New("snapshot already settled")
	ErrUnknownMarket    = errors.New("unknown market")
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code string, message string, details ...string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeAnalysis   = "ANALYSIS_ERROR"
	ErrCodeSettlement = "SETTLEMENT_ERROR"
)
