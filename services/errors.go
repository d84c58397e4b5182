package services

import (
	"errors"
	"fmt"
)

// FailureReason classifies why a booking attempt ended in Failed.
type FailureReason string

const (
	ReasonAuthRequired FailureReason = "authentication required"
	ReasonMissingDates FailureReason = "missing dates"
	ReasonInvalidDate  FailureReason = "invalid date"
	ReasonInvalidRange FailureReason = "invalid range"
	ReasonRejected     FailureReason = "rejected"
	ReasonTransport    FailureReason = "transport"
)

// AuthenticationError is a rejected login. Message is what the user sees.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ValidationError is a local precondition failure; no request was sent.
type ValidationError struct {
	Reason  FailureReason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PartialDegradationError marks a non-fatal failure: the page renders
// without the part that failed.
type PartialDegradationError struct {
	Part string
	Err  error
}

func (e *PartialDegradationError) Error() string {
	return fmt.Sprintf("services: %s unavailable: %v", e.Part, e.Err)
}

func (e *PartialDegradationError) Unwrap() error { return e.Err }

// IncompleteLogoutError is returned by Logout when local state was cleared
// but the backend session could not be invalidated. It is a warning.
type IncompleteLogoutError struct {
	Err error
}

func (e *IncompleteLogoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("logged out locally; backend session not invalidated: %v", e.Err)
	}
	return "logged out locally; backend session not invalidated (no logout endpoint configured)"
}

func (e *IncompleteLogoutError) Unwrap() error { return e.Err }

// IsIncompleteLogout reports whether err is the non-fatal logout warning.
func IsIncompleteLogout(err error) bool {
	var ile *IncompleteLogoutError
	return errors.As(err, &ile)
}

var errLoginNotConfirmed = errors.New("services: login not confirmed by identity read")
