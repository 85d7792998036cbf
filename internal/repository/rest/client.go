// Package rest implements the backend ports against the marketplace REST API.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
	"storefront/pkg/logger"
)

const maxResponseBytes = 10 << 20

// BreakerSettings configures the breaker guarding the backend.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Error is a non-2xx answer from the backend.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// UserMessage is the backend's own description of the failure.
func (e *Error) UserMessage() string {
	return e.Message
}

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("backend temporarily unavailable")

type response struct {
	status int
	body   []byte
}

// Client talks JSON to the backend. It never retries; the breaker fails fast
// while the backend keeps erroring.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
}

func NewClient(baseURL string, timeout time.Duration, bs BreakerSettings) *Client {
	const name = "rest-backend"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bs.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(metrics.BreakerStateValue(to))
		},
	}
	metrics.BreakerState.WithLabelValues(name).Set(0)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*response](settings),
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) (*response, error) {
	start := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.roundTrip(ctx, op, method, path, query, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	logger.BackendCall(ctx, "rest", op, time.Since(start), err)
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, in any) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := auth.FromContext(ctx); id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	// 5xx counts against the breaker; 4xx is a valid answer.
	if httpResp.StatusCode >= 500 {
		return nil, &Error{Op: op, Status: httpResp.StatusCode, Message: errorMessage(data, httpResp.Status)}
	}
	return &response{status: httpResp.StatusCode, body: data}, nil
}

// query fetches a JSON resource into out.
func (c *Client) query(ctx context.Context, op, path string, q url.Values, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	if resp.status == http.StatusNotFound {
		return &Error{Op: op, Status: resp.status, Message: errorMessage(resp.body, "not found")}
	}
	if resp.status < 200 || resp.status >= 300 {
		return &Error{Op: op, Status: resp.status, Message: errorMessage(resp.body, http.StatusText(resp.status))}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// mutate sends a mutation and decodes the {success,data,error} envelope.
func mutate[T any](ctx context.Context, c *Client, op, method, path string, in any) (domain.MutationResult[T], error) {
	resp, err := c.do(ctx, op, method, path, nil, in)
	if err != nil {
		return domain.MutationResult[T]{}, err
	}

	var result domain.MutationResult[T]
	if err := json.Unmarshal(resp.body, &result); err != nil {
		if resp.status >= 200 && resp.status < 300 {
			return domain.MutationResult[T]{}, fmt.Errorf("%s: decode envelope: %w", op, err)
		}
		return domain.Failed[T](errorMessage(resp.body, http.StatusText(resp.status))), nil
	}
	if resp.status < 200 || resp.status >= 300 {
		result.Success = false
		if result.Error == "" {
			result.Error = http.StatusText(resp.status)
		}
	}
	if !result.Success && result.Error == "" {
		result.Error = "request failed"
	}
	return result, nil
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fallback
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}
