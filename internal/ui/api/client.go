// Package api wraps the Armada backend endpoints used by the admin console.
//
// Every operation issues exactly one request and reports its outcome as a
// Result. Operations whose failures are only meant for the diagnostic log
// report them there and mark the Result as logged; the rest leave the error
// for the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Its-donkey/armada-console/internal/ui/metrics"
	"github.com/Its-donkey/armada-console/internal/ui/state"
	"github.com/Its-donkey/armada-console/logging"
)

// ErrRequest marks every backend failure: transport errors, non-2xx responses
// and payloads that do not decode are not told apart.
var ErrRequest = errors.New("backend request failed")

// UserIDHeader carries the acting admin's id on authorized calls.
const UserIDHeader = "X-User-Id"

const logCategory = "api"

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      *state.Store
	Logger     *logging.Logger
	Metrics    *metrics.Recorder
}

// Client issues backend calls and writes list results into the shared store.
type Client struct {
	baseURL string
	http    *http.Client
	store   *state.Store
	logger  *logging.Logger
	metrics *metrics.Recorder
}

// New constructs a Client. A missing store falls back to the process-wide one.
func New(opts Options) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	store := opts.Store
	if store == nil {
		store = state.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		store:   store,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Store returns the store this client writes into.
func (c *Client) Store() *state.Store {
	return c.store
}

// WithStore returns a client sharing c's transport that writes into store.
func (c *Client) WithStore(store *state.Store) *Client {
	cp := *c
	cp.store = store
	return &cp
}

// do performs one backend request and returns the raw response body.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode %s payload: %v", ErrRequest, operation, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if admin, ok := c.store.Identity(); ok {
		req.Header.Set(UserIDHeader, admin.ID)
	}
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(logging.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(operation, method, 0, time.Since(start))
		return nil, 0, fmt.Errorf("%w: %s %s: %v", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(operation, method, resp.StatusCode, time.Since(start))

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read %s %s: %v", ErrRequest, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(responseBody))
		if message == "" {
			message = resp.Status
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: %s %s: %s", ErrRequest, method, path, message)
	}
	c.logger.WithRequestID(requestID).
		WithCategory(logCategory).
		WithField("operation", operation).
		WithField("method", method).
		WithField("path", path).
		WithField("status", resp.StatusCode).
		Debug("backend call")
	return responseBody, resp.StatusCode, nil
}

// report logs a swallowed failure under the console request id carried by ctx
// and returns it as a logged Result.
func report[T any](ctx context.Context, c *Client, operation string, err error, fields map[string]any) Result[T] {
	entry := c.logger.WithRequestID(logging.RequestIDFromContext(ctx)).
		WithCategory(logCategory).
		WithField("operation", operation)
	for k, v := range fields {
		entry.WithField(k, v)
	}
	entry.Error(operation+" failed", err)
	return Result[T]{Err: err, Logged: true}
}

func decodeErr(operation string, err error) error {
	return fmt.Errorf("%w: decode %s response: %v", ErrRequest, operation, err)
}
