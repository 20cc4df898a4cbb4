package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard API-related errors. UpstreamError unwraps to one of these based on
// the HTTP status, so callers can use errors.Is without inspecting codes.
var (
	ErrUnauthorized       = errors.New("opensubtitles: unauthorized (invalid API key or token)")
	ErrForbidden          = errors.New("opensubtitles: forbidden (insufficient permissions or quota exceeded)")
	ErrNotFound           = errors.New("opensubtitles: resource not found")
	ErrRateLimited        = errors.New("opensubtitles: rate limit exceeded")
	ErrServiceUnavailable = errors.New("opensubtitles: service unavailable or internal server error")
)

// ConfigurationError is returned when a required setting is missing.
// It is fatal for the attempted operation only.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is not configured", e.Setting)
}

// UpstreamError is returned when the upstream API answered with a non-success status.
// Message carries the upstream explanation verbatim when one was sent.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream error (status %d)", e.Status)
}

// Unwrap maps the status to one of the package sentinels.
func (e *UpstreamError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServiceUnavailable
	}
	return nil
}

// UpstreamUnavailableError is returned when the transport itself failed
// (DNS, connection refused, timeout, truncated body).
type UpstreamUnavailableError struct {
	Op  string
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable during %s: %v", e.Op, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// StoreError is returned by history stores for any persistence or read failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("history store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError, leaving nil and existing StoreErrors untouched.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsUnavailable reports whether err is (or wraps) an UpstreamUnavailableError.
func IsUnavailable(err error) bool {
	var target *UpstreamUnavailableError
	return errors.As(err, &target)
}

// AsUpstream extracts the UpstreamError from err, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var target *UpstreamError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
