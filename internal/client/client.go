package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	apihttp "github.com/GriffinCanCode/switcher/internal/api/http"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status    int
	Message   string
	Kind      applist.Kind
	RequestID string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("switcher api: %d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("switcher api: %d: %s", e.Status, e.Message)
}

// Unwrap maps statuses back to engine errors, so callers can use errors.Is
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return applist.ErrUnknownApp
	case http.StatusBadRequest:
		return applist.ErrInvalidEvent
	default:
		return nil
	}
}

// Config defines client behavior
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
	// Breaker trips after this many consecutive server failures
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultConfig returns client defaults for a local server
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://127.0.0.1:8000",
		Timeout:          10 * time.Second,
		MaxRetries:       2,
		MinWait:          100 * time.Millisecond,
		MaxWait:          2 * time.Second,
		FailureThreshold: 5,
		BreakerTimeout:   10 * time.Second,
	}
}

// Client talks to the switcher HTTP API
type Client struct {
	resty *resty.Client
	// once sends events. Events are not idempotent, so a lost reply must not replay them.
	once    *resty.Client
	breaker *resilience.Breaker
}

// New creates a client with retries and a circuit breaker
func New(cfg Config) *Client {
	r := newResty(newRetryClient(cfg, cfg.MaxRetries), cfg)
	once := newResty(newRetryClient(cfg, 0), cfg)

	threshold := cfg.FailureThreshold
	breaker := resilience.New("switcher-api", resilience.Settings{
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		IsFailure: isServerFailure,
	})

	return &Client{resty: r, once: once, breaker: breaker}
}

func newRetryClient(cfg Config, retries int) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.Logger = nil
	// Hand the final response to resty instead of a "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return retryClient
}

func newResty(retryClient *retryablehttp.Client, cfg Config) *resty.Client {
	r := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "switcher-client/1.0")
	r.JSONMarshal = sonic.Marshal
	r.JSONUnmarshal = sonic.Unmarshal
	return r
}

// isServerFailure counts transport errors and 5xx against the breaker
func isServerFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// BreakerState reports the circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Health fetches GET /health
func (c *Client) Health(ctx context.Context) (*apihttp.HealthResponse, error) {
	return get[apihttp.HealthResponse](ctx, c, "/health")
}

// Apps fetches the live snapshot
func (c *Client) Apps(ctx context.Context) (*apihttp.AppsResponse, error) {
	return get[apihttp.AppsResponse](ctx, c, "/apps")
}

// Installed fetches the apps the switcher cycles through
func (c *Client) Installed(ctx context.Context) ([]types.AppEntry, error) {
	resp, err := get[apihttp.AppListResponse](ctx, c, "/apps/installed")
	if err != nil {
		return nil, err
	}
	return resp.Apps, nil
}

// Removed fetches the apps the user hid
func (c *Client) Removed(ctx context.Context) ([]types.AppEntry, error) {
	resp, err := get[apihttp.AppListResponse](ctx, c, "/apps/removed")
	if err != nil {
		return nil, err
	}
	return resp.Apps, nil
}

// HotCodes fetches the key to app mapping
func (c *Client) HotCodes(ctx context.Context) (map[string]string, error) {
	resp, err := get[apihttp.HotCodesResponse](ctx, c, "/apps/hotcodes")
	if err != nil {
		return nil, err
	}
	return resp.HotCodes, nil
}

// Send posts an envelope to /events. It is never retried: on a transport
// error the event may or may not have been applied, and callers must check
// the live revision before resending.
func (c *Client) Send(ctx context.Context, env applist.Envelope) (*apihttp.EventResponse, error) {
	return resilience.Execute(c.breaker, func() (*apihttp.EventResponse, error) {
		var out apihttp.EventResponse
		resp, err := c.once.R().
			SetContext(ctx).
			SetBody(env).
			SetResult(&out).
			SetError(&apihttp.ErrorResponse{}).
			Post("/events")
		if err := check(resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// Dispatch encodes event and sends it
func (c *Client) Dispatch(ctx context.Context, event applist.Event) (*apihttp.EventResponse, error) {
	env, err := applist.NewEnvelope(event)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, env)
}

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return resilience.Execute(c.breaker, func() (*T, error) {
		var out T
		resp, err := c.resty.R().
			SetContext(ctx).
			SetResult(&out).
			SetError(&apihttp.ErrorResponse{}).
			Get(path)
		if err := check(resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("switcher api: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
	if body, ok := resp.Error().(*apihttp.ErrorResponse); ok && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Kind = body.Kind
		apiErr.RequestID = string(body.RequestID)
	}
	return apiErr
}
