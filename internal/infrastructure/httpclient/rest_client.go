package httpclient

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/metrics"
	"portfolio_tracker/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Doer is the part of fasthttp.Client the REST client needs.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// RESTClient issues rate-limited JSON GET requests to one provider and maps
// failures onto the apperrors taxonomy. Transient failures are retried with
// capped exponential backoff.
type RESTClient struct {
	client    Doer
	provider  string
	timeout   time.Duration
	limiter   *rate.Limiter
	retry     utils.RetryPolicy
	userAgent string
	logger    *zap.Logger
}

// Option customises a RESTClient.
type Option func(*RESTClient)

// WithDoer replaces the underlying fasthttp client.
func WithDoer(d Doer) Option {
	return func(c *RESTClient) { c.client = d }
}

// WithLimiter sets the outbound rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *RESTClient) { c.limiter = l }
}

// WithRetryPolicy overrides the default backoff.
func WithRetryPolicy(p utils.RetryPolicy) Option {
	return func(c *RESTClient) { c.retry = p }
}

// NewRESTClient creates a client for provider.
func NewRESTClient(provider string, timeout time.Duration, logger *zap.Logger, opts ...Option) *RESTClient {
	c := &RESTClient{
		client:    &fasthttp.Client{Name: "Portfolio-Tracker/1.0"},
		provider:  provider,
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		retry:     utils.DefaultRetryPolicy,
		userAgent: "Portfolio-Tracker/1.0",
		logger:    logger.Named(provider),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in errors and metrics.
func (c *RESTClient) Provider() string {
	return c.provider
}

// GetJSON fetches requestURL and decodes a 200 body into out. op names the
// calling operation in returned errors.
func (c *RESTClient) GetJSON(ctx context.Context, op, requestURL string, headers map[string]string, out any) error {
	return utils.Retry(ctx, c.retry, func() error {
		return c.getOnce(ctx, op, requestURL, headers, out)
	})
}

func (c *RESTClient) getOnce(ctx context.Context, op, requestURL string, headers map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.WrapWithCode(apperrors.CodeUnavailable, op, fmt.Errorf("rate limiter wait: %w", err))
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	c.logger.Debug("Requesting", zap.String("op", op), zap.String("url", requestURL))
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		metrics.UpstreamRequests.WithLabelValues(c.provider, metrics.StatusClass(0)).Inc()
		c.logger.Warn("Request failed", zap.String("op", op), zap.String("url", requestURL), zap.Error(err))
		return &apperrors.AppError{
			Code:    apperrors.CodeUnavailable,
			Op:      op,
			Message: fmt.Sprintf("Network error while contacting %s. Please check your connection.", c.provider),
			Err:     err,
		}
	}

	status := resp.StatusCode()
	metrics.UpstreamRequests.WithLabelValues(c.provider, metrics.StatusClass(status)).Inc()
	if status != fasthttp.StatusOK {
		retryAfter := apperrors.ParseRetryAfter(string(resp.Header.Peek("Retry-After")), time.Now())
		c.logger.Warn("Upstream returned non-200",
			zap.String("op", op),
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", truncate(resp.Body(), 512)),
		)
		return apperrors.FromHTTPStatus(op, c.provider, status, retryAfter)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.Error("Failed to unmarshal response",
			zap.String("op", op),
			zap.String("url", requestURL),
			zap.ByteString("responseBody", truncate(resp.Body(), 512)),
			zap.Error(err))
		return apperrors.WrapWithCode(apperrors.CodeUpstream, op, fmt.Errorf("failed to unmarshal %s response: %w", c.provider, err))
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
