// Package rest implements the service.Service interface over the todo REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"

	"todoboard/internal/config"
	"todoboard/internal/service"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// TokenLoader supplies the bearer token at send time.
type TokenLoader interface {
	Load(ctx context.Context) (string, error)
}

// Client implements service.Service using the REST backend.
// It does not retry or cache; callers own retry policy.
type Client struct {
	baseURL string
	http    *http.Client // carries the bearer token
	auth    *http.Client // unauthenticated, used for the token endpoint
	log     *slog.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client for cfg.APIURL. Every request reads the current token
// from tokens; an empty token sends the request unauthenticated.
func New(cfg *config.Config, tokens TokenLoader, logger *slog.Logger) *Client {
	base := &requestIDTransport{next: http.DefaultTransport}
	authClient := &http.Client{Transport: base, Timeout: cfg.Timeout}
	apiClient := &http.Client{Transport: &bearerTransport{next: base, tokens: tokens}, Timeout: cfg.Timeout}
	return newClient(cfg.APIURL, apiClient, authClient, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// The bearer token is still read from tokens on every request.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens TokenLoader) *Client {
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	base := &requestIDTransport{next: next}
	authClient := &http.Client{Transport: base, Timeout: httpClient.Timeout}
	apiClient := &http.Client{Transport: &bearerTransport{next: base, tokens: tokens}, Timeout: httpClient.Timeout}
	return newClient(baseURL, apiClient, authClient, nil)
}

func newClient(baseURL string, apiClient, authClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    apiClient,
		auth:    authClient,
		log:     logger,
	}
}

// do sends one JSON request. A nil body sends no payload; a nil out discards
// the response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "request_id", requestID, "error", err)
		return &service.NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()
	c.log.Debug("request", "op", op, "method", method, "path", path, "status", res.StatusCode, "request_id", requestID)

	if err := googleapi.CheckResponse(res); err != nil {
		return serverError(op, err)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// serverError converts a googleapi.CheckResponse failure into a ServerError
// carrying the backend's detail message.
func serverError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &service.ServerError{Op: op, StatusCode: gerr.Code, Message: detailMessage([]byte(gerr.Body))}
}

// detailMessage extracts {"detail": ...} from an error body. A string detail
// is used as-is, structured details are compacted, anything else falls back
// to the trimmed body.
func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, envelope.Detail); err == nil {
			return buf.String()
		}
	}
	msg := strings.TrimSpace(string(body))
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}
