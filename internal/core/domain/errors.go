package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrInvalidIdentifier = errors.New("invalid profile identifier")

	// Activity source failures
	ErrUserNotFound     = errors.New("user not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrTransientNetwork = errors.New("transient network error")

	// Generative model failures
	ErrModelUnavailable = errors.New("model unavailable")
	ErrTimeout          = errors.New("generation timed out")
	ErrQuotaExceeded    = errors.New("quota exceeded")
)

// InvalidIdentifierError reports an input that is not a profile URL.
type InvalidIdentifierError struct {
	Input string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid profile url %q", e.Input)
}

func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// FetchError is returned by activity sources. Kind is one of ErrUserNotFound,
// ErrRateLimited or ErrTransientNetwork.
type FetchError struct {
	Kind     error
	Username string
	Err      error
}

func NewFetchError(kind error, username string, err error) *FetchError {
	return &FetchError{Kind: kind, Username: username, Err: err}
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v: %v", e.Username, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Username, e.Kind)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// GenerationError is returned by brains. Kind is one of ErrModelUnavailable,
// ErrTimeout or ErrQuotaExceeded.
type GenerationError struct {
	Kind  error
	Model string
	Err   error
}

func NewGenerationError(kind error, model string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Model: model, Err: err}
}

func (e *GenerationError) Error() string {
	msg := "generate"
	if e.Model != "" {
		msg += " with " + e.Model
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRetryable reports whether a generation error is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return false
	}
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrTimeout)
}

// AnomalyKind classifies non-fatal problems found while parsing model output.
type AnomalyKind string

const (
	AnomalyMissingUsername AnomalyKind = "missing_username"
	AnomalyMissingSection  AnomalyKind = "missing_section"
	AnomalyMissingCitation AnomalyKind = "missing_citation"
	AnomalyUnknownCitation AnomalyKind = "unknown_citation"
	AnomalyOrphanLine      AnomalyKind = "orphan_line"
)

// Anomaly is recorded on a persona document, never raised.
type Anomaly struct {
	Kind AnomalyKind
	Line string
}
