package apperrors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type AppError struct {
	Code       Code
	Op         string
	Message    string
	RetryAfter time.Duration
	Status     int // upstream HTTP status, 0 when not applicable
	Err        error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, msg)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError with a user-facing message and no cause.
func New(code Code, op, message string) *AppError {
	return &AppError{Code: code, Op: op, Message: message}
}

func WrapWithCode(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// RateLimited builds a rate-limit error carrying an optional retry-after hint.
func RateLimited(op, message string, retryAfter time.Duration) *AppError {
	return &AppError{Code: CodeRateLimited, Op: op, Message: message, RetryAfter: retryAfter}
}

// CodeOf returns the code of the first AppError in err's chain, CodeInternal otherwise.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryable reports whether an automatic retry is allowed. Only transient
// upstream failures qualify; rate limits and bad input never do.
func IsRetryable(err error) bool {
	return Is(err, CodeUnavailable)
}

// RetryAfterOf returns the retry-after hint of a rate-limit error, 0 when unknown.
func RetryAfterOf(err error) time.Duration {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.RetryAfter
	}
	return 0
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// ParseRetryAfter reads a Retry-After header value given in seconds or as an HTTP date.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, value); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// FromHTTPStatus classifies a non-2xx upstream response.
func FromHTTPStatus(op, provider string, status int, retryAfter time.Duration) *AppError {
	switch {
	case status == 429:
		return &AppError{Code: CodeRateLimited, Op: op, Status: status, RetryAfter: retryAfter,
			Message: fmt.Sprintf("Rate limit exceeded by %s. Please wait a moment before trying again.", provider)}
	case status == 404:
		return &AppError{Code: CodeNotFound, Op: op, Status: status,
			Message: fmt.Sprintf("%s could not find the requested resource.", provider)}
	case status == 400:
		return &AppError{Code: CodeInvalidInput, Op: op, Status: status,
			Message: fmt.Sprintf("%s rejected the request as invalid.", provider)}
	case status >= 500:
		return &AppError{Code: CodeUnavailable, Op: op, Status: status,
			Message: fmt.Sprintf("%s service is temporarily unavailable. Please try again later.", provider)}
	default:
		return &AppError{Code: CodeUpstream, Op: op, Status: status,
			Message: fmt.Sprintf("%s request failed (%d)", provider, status)}
	}
}

// StatusOf returns the upstream HTTP status carried by err, 0 when unknown.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
