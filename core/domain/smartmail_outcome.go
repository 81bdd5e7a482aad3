package domain

import (
	"errors"
	"fmt"
	"time"
)

// ModelFailureReason categorizes why a remote model call failed.
type ModelFailureReason string

const (
	FailureTimeout            ModelFailureReason = "timeout"
	FailureRateLimited        ModelFailureReason = "rate_limited"
	FailureServiceUnavailable ModelFailureReason = "service_unavailable"
	FailureMalformed          ModelFailureReason = "malformed_response"
	FailureAuthMissing        ModelFailureReason = "auth_missing"
)

// ModelCallError is the failure arm of a model call outcome. Every remote
// client collapses transport, HTTP and parse errors into this type; pipeline
// stages treat any of them as "use the local fallback" and never re-raise.
type ModelCallError struct {
	Reason     ModelFailureReason
	RetryAfter time.Duration // only set for rate-limited failures
	Err        error
}

func (e *ModelCallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model call failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("model call failed (%s)", e.Reason)
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}

// NewModelCallError wraps err with a failure reason.
func NewModelCallError(reason ModelFailureReason, err error) *ModelCallError {
	return &ModelCallError{Reason: reason, Err: err}
}

// FailureReasonOf extracts the reason from an error chain, or "" when the
// error is not a model call failure.
func FailureReasonOf(err error) ModelFailureReason {
	var mce *ModelCallError
	if errors.As(err, &mce) {
		return mce.Reason
	}
	return ""
}

// SentimentScore is one label/score pair from the sentiment model.
type SentimentScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
