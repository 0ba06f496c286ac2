package utils

import (
	"errors"
	"net/http"
)

// Errors shared by every layer. Domain errors live with the service.
var (
	ErrRateLimitExceeded      = errors.New("rate_limit_exceeded")
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries an HTTP status and public code from a service up to a
// controller.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
