// Package gateway is the typed client for the Mesagoo gateway REST API.
//
// Every call reads credentials from the session store, performs exactly one
// HTTP request and normalizes the response: the data envelope is unwrapped
// when present, non-2xx bodies become REQUEST_FAILED errors carrying the
// server message, and a 401 clears the session and reports SESSION_EXPIRED.
// Nothing is retried and no state is cached between calls.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mesagoo-console/internal/common/errors"
	"mesagoo-console/internal/common/logger"
	"mesagoo-console/internal/common/metrics"
	"mesagoo-console/internal/models"
	"mesagoo-console/internal/session"
)

// SessionExpiredHandler is invoked after a 401 has cleared the session.
// The composition root registers it to redirect the user to login; it
// replaces a process-wide broadcast.
type SessionExpiredHandler func()

// Options configures a Client.
type Options struct {
	// Store is required; credentials are read from it on every call.
	Store session.Store

	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration

	// Logger defaults to a no-op logger.
	Logger logger.Logger

	// OnSessionExpired is called once per 401, after the store is cleared.
	OnSessionExpired SessionExpiredHandler
}

// Client performs authenticated requests against the gateway API.
type Client struct {
	store            session.Store
	httpClient       *http.Client
	logger           logger.Logger
	onSessionExpired SessionExpiredHandler
}

// NewClient creates a gateway API client.
func NewClient(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		store:            opts.Store,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           log,
		onSessionExpired: opts.OnSessionExpired,
	}, nil
}

// Store exposes the session store for presentation-layer guards.
func (c *Client) Store() session.Store {
	return c.store
}

// IsAuthenticated reports whether a bearer token is present. It does not
// verify the token; an expired one is only discovered through a 401.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.store.IsAuthenticated(ctx)
}

// CurrentUser returns the cached profile from the session store.
func (c *Client) CurrentUser(ctx context.Context) *models.User {
	return c.store.CurrentUser(ctx)
}

// do performs one JSON request. A nil out discards the response payload.
func (c *Client) do(ctx context.Context, action, method, path string, body interface{}, out interface{}) error {
	return c.request(ctx, action, method, path, body, out, true)
}

// doUnauthenticated is for login only: no Authorization header at all.
func (c *Client) doUnauthenticated(ctx context.Context, action, method, path string, body interface{}, out interface{}) error {
	return c.request(ctx, action, method, path, body, out, false)
}

func (c *Client) request(ctx context.Context, action, method, path string, body interface{}, out interface{}, withAuth bool) error {
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewValidationError(fmt.Sprintf("encode request body: %s", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(settings.BaseURL, path), reqBody)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("build request: %s", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		// Attached even when the token is empty; the server rejects it.
		req.Header.Set("Authorization", "Bearer "+settings.BearerToken)
	}

	return c.send(ctx, action, req, out)
}

// upload performs the multipart POST used by the bulk CSV upload. The
// Content-Type is left to the multipart writer so it carries the boundary.
func (c *Client) upload(ctx context.Context, action, path string, fileField, filename string, file io.Reader, fields map[string]string, out interface{}) error {
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("build multipart form: %s", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.NewValidationError(fmt.Sprintf("read upload file: %s", err))
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return errors.NewValidationError(fmt.Sprintf("build multipart form: %s", err))
		}
	}
	if err := writer.Close(); err != nil {
		return errors.NewValidationError(fmt.Sprintf("build multipart form: %s", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(settings.BaseURL, path), &buf)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("build request: %s", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+settings.BearerToken)

	return c.send(ctx, action, req, out)
}

func (c *Client) send(ctx context.Context, action string, req *http.Request, out interface{}) error {
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.WithFields(map[string]interface{}{
		"action":    action,
		"method":    req.Method,
		"url":       req.URL.String(),
		"requestId": requestID,
	})
	log.Debug("gateway request", nil)

	metrics.APIRequestsTotal.WithLabelValues(action).Inc()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		netErr := errors.NewNetworkError(action, err)
		metrics.APIRequestsFailed.WithLabelValues(action, string(netErr.Code)).Inc()
		log.WithError(err).Warn("gateway request transport failure", nil)
		return netErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := errors.NewNetworkError(action, err)
		metrics.APIRequestsFailed.WithLabelValues(action, string(netErr.Code)).Inc()
		return netErr
	}

	if err := c.handleResponse(ctx, action, resp.StatusCode, respBody, out); err != nil {
		metrics.APIRequestsFailed.WithLabelValues(action, errors.ExtractCode(err)).Inc()
		log.Warn("gateway request failed", map[string]interface{}{
			"status":    resp.StatusCode,
			"errorCode": errors.ExtractCode(err),
		})
		return err
	}

	log.Debug("gateway request completed", map[string]interface{}{"status": resp.StatusCode})
	return nil
}

func (c *Client) handleResponse(ctx context.Context, action string, statusCode int, body []byte, out interface{}) error {
	if statusCode == http.StatusUnauthorized {
		metrics.SessionExpiries.Inc()
		if err := c.store.Logout(ctx); err != nil {
			c.logger.WithError(err).Warn("failed to clear expired session", nil)
		}
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return errors.NewSessionExpiredError(action)
	}

	if statusCode < 200 || statusCode > 299 {
		// A non-JSON error body falls back to the synthesized message.
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &errBody)
		return errors.NewRequestFailedError(action, statusCode, errBody.Message)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		// Delete endpoints return no body; absence of content is success.
		return nil
	}

	payload := body
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		if string(envelope.Data) == "null" {
			// An enveloped null (empty list) decodes to the zero value.
			return nil
		}
		payload = envelope.Data
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.NewDecodeError(action, err)
	}
	return nil
}

func joinURL(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + path
}
