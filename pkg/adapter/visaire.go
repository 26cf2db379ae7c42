package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
)

const (
	healthPath   = "/health"
	generatePath = "/generate"

	requestIDHeader = "X-Request-ID"

	// maxResponseSize bounds how much of a response body is read
	maxResponseSize = 1 << 20
)

// VisaireClient talks to the animation generation service over HTTP
type VisaireClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type VisaireOption func(*VisaireClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) VisaireOption {
	return func(c *VisaireClient) {
		c.httpClient = client
	}
}

// WithTimeout sets a timeout on the default HTTP client. Zero means no timeout.
func WithTimeout(timeout time.Duration) VisaireOption {
	return func(c *VisaireClient) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewVisaire creates a client for the service at baseURL
func NewVisaire(baseURL string, opts ...VisaireOption) (*VisaireClient, error) {
	if baseURL == "" {
		return nil, goerr.New("base URL is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base URL", goerr.V("base_url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("base URL must be http or https", goerr.V("base_url", baseURL))
	}
	if u.Host == "" {
		return nil, goerr.New("base URL has no host", goerr.V("base_url", baseURL))
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &VisaireClient{
		baseURL:    u,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// healthResponse is the body of GET /health
type healthResponse struct {
	Status string `json:"status"`
}

// generateRequest is the body of POST /generate
type generateRequest struct {
	UserPrompt string `json:"user_prompt"`
}

// generateResponse is the body returned by POST /generate. Detail is set on
// failure; it is kept as raw JSON because some servers return structured
// validation errors instead of a string.
type generateResponse struct {
	VideoURL string          `json:"video_url"`
	Detail   json.RawMessage `json:"detail"`
}

func (c *VisaireClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

// CheckHealth returns StatusOnline or StatusDegraded depending on the status
// reported by the service. Any failure to obtain a parsable response returns
// StatusOffline with the error.
func (c *VisaireClient) CheckHealth(ctx context.Context) (model.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(healthPath), nil)
	if err != nil {
		return model.StatusOffline, goerr.Wrap(err, "failed to create health request")
	}

	body, _, err := c.do(ctx, req)
	if err != nil {
		return model.StatusOffline, err
	}

	var resp healthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.StatusOffline, goerr.Wrap(err, "failed to parse health response", goerr.V("body", truncateBody(body)))
	}

	return model.StatusFromIndicator(resp.Status), nil
}

// Generate requests an animation for prompt. A non-2xx status, or a 2xx
// response without a video URL, is returned as *model.ServiceError.
func (c *VisaireClient) Generate(ctx context.Context, prompt string) (*model.GenerateResult, error) {
	raw, err := json.Marshal(generateRequest{UserPrompt: prompt})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(generatePath), bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, statusCode, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	parseErr := json.Unmarshal(body, &resp)

	if statusCode < 200 || statusCode > 299 {
		svcErr := &model.ServiceError{StatusCode: statusCode}
		if parseErr == nil {
			svcErr.Detail = detailMessage(resp.Detail)
		}
		return nil, goerr.Wrap(svcErr, "generation failed",
			goerr.V("status", statusCode),
			goerr.V("body", truncateBody(body)),
		)
	}

	if parseErr != nil {
		return nil, goerr.Wrap(parseErr, "failed to parse generate response", goerr.V("body", truncateBody(body)))
	}
	if resp.VideoURL == "" {
		svcErr := &model.ServiceError{StatusCode: statusCode, Detail: detailMessage(resp.Detail)}
		return nil, goerr.Wrap(svcErr, "generate response has no video URL", goerr.V("body", truncateBody(body)))
	}

	return &model.GenerateResult{VideoURL: resp.VideoURL}, nil
}

// ResolveURL returns ref as an absolute URL relative to the service base URL
func (c *VisaireClient) ResolveURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	origin := url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host}
	return origin.ResolveReference(u).String()
}

func (c *VisaireClient) do(ctx context.Context, req *http.Request) ([]byte, int, error) {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	logger := logging.From(ctx).With("request_id", requestID, "method", req.Method, "url", req.URL.String())
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "request failed",
			goerr.V("request_id", requestID),
			goerr.V("url", req.URL.String()),
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, goerr.Wrap(err, "failed to read response body",
			goerr.V("request_id", requestID),
			goerr.V("status", resp.StatusCode),
		)
	}

	logger.Debug("response received", "status", resp.StatusCode, "elapsed", time.Since(started), "size", len(body))
	return body, resp.StatusCode, nil
}

// detailMessage extracts a human readable message from a detail field. A
// string is used directly; a list of objects with "msg" (validation errors)
// is joined.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
