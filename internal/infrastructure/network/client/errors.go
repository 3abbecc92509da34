package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/rpc"
)

// isRateLimitText reports whether an RPC error message looks like a
// provider throttling response.
func isRateLimitText(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate limit")
}

// rpcStatus extracts the HTTP status of a JSON-RPC failure, 0 when the
// request never got an HTTP answer.
func rpcStatus(err error) int {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.ErrorCode() == 429 {
			return 429
		}
		return 200
	}
	return 0
}

// classifyRPCError maps a JSON-RPC failure onto the apperrors taxonomy.
// Everything that is not a rate limit counts as a transient outage.
func classifyRPCError(op, network string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	status := rpcStatus(err)
	if status == 429 || isRateLimitText(err.Error()) {
		return &apperrors.AppError{
			Code:    apperrors.CodeRateLimited,
			Op:      op,
			Status:  429,
			Message: fmt.Sprintf("Rate limit exceeded for %s. Please wait before refreshing again.", network),
			Err:     err,
		}
	}
	msg := fmt.Sprintf("Failed to fetch %s balance. Please try again later.", network)
	if errors.Is(err, context.DeadlineExceeded) || status == 0 {
		msg = fmt.Sprintf("Network error while fetching %s data. Please check your connection.", network)
	}
	return &apperrors.AppError{
		Code:    apperrors.CodeUnavailable,
		Op:      op,
		Status:  status,
		Message: msg,
		Err:     err,
	}
}

// notConfigured is returned by adapters whose provider has no credentials.
func notConfigured(op, provider string) error {
	return apperrors.New(apperrors.CodeUnavailable, op,
		fmt.Sprintf("%s provider not configured", provider))
}
