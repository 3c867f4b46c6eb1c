package client

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
	"time"

	"github.com/google/uuid"

	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

// RequestIDHeader carries a per-request identifier for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the API base URL, e.g. "/employees".
	Path string
	// Route is the metrics label for Path, e.g. "/employees/{id}". Defaults to Path.
	Route string
	Query url.Values
	JSON  any
	Form  *Form
}

// Caller performs authenticated API calls and decodes JSON responses into out.
type Caller interface {
	Call(ctx context.Context, req Request, out any) error
	ResolveAsset(path string) string
}

// APIClient attaches the bearer token to every request and maps failures to *APIError.
type APIClient struct {
	http        *http.Client
	baseURL     *url.URL
	assetOrigin *url.URL
	tokens      TokenSource
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// NewAPIClient creates a client for the API at baseURL. Relative asset paths are resolved
// against assetOrigin, or against the origin of baseURL when assetOrigin is empty.
func NewAPIClient(
	log *slog.Logger,
	httpClient *http.Client,
	baseURL, assetOrigin string,
	tokens TokenSource,
	metrics *metrics.Metrics,
) (*APIClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse api url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	if assetOrigin != "" {
		origin, err = url.Parse(assetOrigin)
		if err != nil {
			return nil, fmt.Errorf("failed to parse asset origin %q: %w", assetOrigin, err)
		}
	}

	if tokens == nil {
		tokens = StaticToken("")
	}

	return &APIClient{
		http:        httpClient,
		baseURL:     base,
		assetOrigin: origin,
		tokens:      tokens,
		log:         log.With(slog.String("component", "api_client")),
		metrics:     metrics,
	}, nil
}

// BaseURL returns the API base URL.
func (c *APIClient) BaseURL() string {
	return c.baseURL.String()
}

// ResolveAsset turns a relative asset path returned by the API into an absolute URL.
func (c *APIClient) ResolveAsset(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	if ref.IsAbs() {
		return path
	}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}

	return c.assetOrigin.ResolveReference(ref).String()
}

// Call executes req. On a 2xx response the JSON body is decoded into out (when out is not nil).
// Every other outcome is returned as an *APIError.
func (c *APIClient) Call(ctx context.Context, req Request, out any) error {
	route := req.Route
	if route == "" {
		route = req.Path
	}

	startTime := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.APIRequestDuration.WithLabelValues(req.Method, route, outcome).
			Observe(time.Since(startTime).Seconds())
	}()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		outcome = string(KindRequest)
		return &APIError{Kind: KindRequest, Message: "failed to build request", Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		outcome = string(KindNetwork)
		c.log.WarnContext(ctx, "Request failed", "method", req.Method, "path", req.Path, sl.Err(err))
		return &APIError{Kind: KindNetwork, Message: GenericNetworkMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = string(KindNetwork)
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: GenericNetworkMessage,
			Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := parseError(resp.StatusCode, resp.Header.Get("Content-Type"), body)
		outcome = string(apiErr.Kind)
		c.log.DebugContext(ctx, "Request rejected",
			"method", req.Method, "path", req.Path, "status", resp.StatusCode, "kind", apiErr.Kind)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err = json.Unmarshal(body, out); err != nil {
		outcome = string(KindServer)
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "unexpected response from server",
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

func (c *APIClient) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		payload, ctype, err := req.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(payload), ctype
	case req.JSON != nil:
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", target, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", models.UserAgent)
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

type errorPayload struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// parseError builds an *APIError from a non-2xx response.
func parseError(status int, contentType string, body []byte) *APIError {
	var (
		message string
		fields  map[string][]string
	)

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Message
		if message == "" {
			message = payload.Error
		}
		fields = parseFields(payload.Errors)
		if fields == nil {
			fields = parseFields(payload.Data)
		}
	} else if strings.Contains(contentType, "html") || bytes.HasPrefix(bytes.TrimSpace(body), []byte("<")) {
		message = messageFromHTML(body)
	}

	kind := kindForStatus(status, len(fields) > 0)
	if kind != KindValidation {
		fields = nil
	}

	if message == "" {
		switch kind {
		case KindUnauthorized:
			message = ErrUnauthorized.Message
		case KindNotFound:
			message = ErrNotFound.Message
		case KindValidation:
			message = ErrValidation.Message
		case KindRequest, KindServer, KindNetwork:
			message = GenericNetworkMessage
		}
	}

	return &APIError{Kind: kind, Status: status, Message: message, Fields: fields}
}

// parseFields decodes a field error map whose values are either strings or lists of strings.
func parseFields(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err != nil || len(byField) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(byField))
	for name, value := range byField {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			fields[name] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			fields[name] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	return fields
}

// IsUnauthorized reports whether err means the token is missing or was rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
