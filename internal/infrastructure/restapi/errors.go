package restapi

import (
	"math"
	"net/http"
	"strconv"

	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"` // seconds
}

// respondError maps err onto a status through its apperrors code and sets
// Retry-After when the error carries a hint.
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()

	resp := ErrorResponse{Error: apperrors.MessageOf(err), Code: string(code)}
	if status == http.StatusInternalServerError {
		resp.Error = "Internal server error"
	}
	if wait := apperrors.RetryAfterOf(err); wait > 0 {
		resp.RetryAfter = int(math.Ceil(wait.Seconds()))
		c.Header("Retry-After", strconv.Itoa(resp.RetryAfter))
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}
