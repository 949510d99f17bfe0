package rest

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/ridepool/client-go/domain"
)

// DefaultTimeout is the fixed per-request timeout. Every call is a single
// attempt: no retries, no caching.
const DefaultTimeout = 10 * time.Second

// Client is a preconfigured sender for the backend API: fixed base address,
// fixed timeout, JSON content type on every request.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// CallOption customizes a single request.
type CallOption func(*fasthttp.Request)

// WithBearer attaches an Authorization header for authenticated calls.
func WithBearer(accessToken string) CallOption {
	return func(req *fasthttp.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) CallOption {
	return func(req *fasthttp.Request) {
		req.Header.Set(key, value)
	}
}

// NewClient constructs a Client for the given base address.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// Get issues a GET request and decodes a 2xx response body into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...CallOption) error {
	return c.do(ctx, fasthttp.MethodGet, path, nil, out, opts...)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...CallOption) error {
	return c.do(ctx, fasthttp.MethodPost, path, body, out, opts...)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...CallOption) error {
	return c.do(ctx, fasthttp.MethodPut, path, body, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, opts ...CallOption) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeNetwork, "request aborted", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	requestID := uuid.NewString()
	req.SetRequestURI(c.baseURL + "/" + strings.TrimPrefix(path, "/"))
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Request-ID", requestID)

	for _, opt := range opts {
		opt(req)
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request body", err)
		}
		req.SetBody(payload)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	start := time.Now()
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return domain.WrapError(domain.ErrCodeNetwork, "backend unreachable", err)
	}

	status := resp.StatusCode()
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)

	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return &HTTPError{
			StatusCode: status,
			Body:       append([]byte(nil), resp.Body()...),
		}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "decode response body", err)
	}
	return nil
}
