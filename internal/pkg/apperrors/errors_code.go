package apperrors

import "net/http"

type Code string

const (
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeNotFound       Code = "NOT_FOUND"
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodeUnavailable    Code = "UNAVAILABLE"
	CodePartialFailure Code = "PARTIAL_FAILURE"
	CodeUpstream       Code = "UPSTREAM_ERROR"
	CodeInternal       Code = "INTERNAL_ERROR"
)

// HTTPStatus maps a code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodePartialFailure, CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
