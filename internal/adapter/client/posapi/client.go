package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MikeRez0/posadmin/internal/adapter/config"
	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	defaultRetryAfter = 10 * time.Second
	maxErrorBody      = 64 << 10
)

// Observer receives one call per completed remote request. Status is zero
// when no response arrived.
type Observer interface {
	ObserveRemoteCall(endpoint string, status int, elapsed time.Duration)
}

// Client talks to the remote POS API. It holds no credentials; Session binds
// a bearer token to it.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

var _ port.Connector = (*Client)(nil)

func NewClient(cfg *config.PosAPI, observer Observer, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid pos api address %q", cfg.BaseURL)
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   log,
		observer: observer,
	}, nil
}

// Session returns a client that acts with the given remote api token.
func (c *Client) Session(apiToken string) port.RemoteAPI {
	return &SessionClient{client: c, token: apiToken}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a remote api bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp loginResponse
	err := c.do(ctx, "", &request{
		endpoint: "auth.login",
		method:   http.MethodPost,
		path:     "/auth/login",
		form:     form,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: login response without token", domain.ErrNetworkFailure)
	}
	return resp.AccessToken, nil
}

type request struct {
	endpoint       string
	method         string
	path           string
	query          url.Values
	body           any
	form           url.Values
	idempotencyKey string
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// do performs the request and decodes a 2xx body into out. Failures that
// never produced an answer, and answers asking to retry later, match
// domain.ErrNetworkFailure. Every other non-2xx answer is a
// *domain.RemoteError.
func (c *Client) do(ctx context.Context, token string, r *request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader = http.NoBody
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		buf, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("error encoding %s request: %w", r.endpoint, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("error on %s %s: %w", r.method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, r.idempotencyKey)
	}

	c.logger.Debug("Fire remote request",
		zap.String("endpoint", r.endpoint),
		zap.String("method", r.method),
		zap.String("path", r.path))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(r.endpoint, 0, start)
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetworkFailure, r.method, r.path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(r.endpoint, resp.StatusCode, start)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: error on %s response decode: %w", domain.ErrNetworkFailure, r.endpoint, err)
		}
		return nil

	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), start)
		c.logger.Debug("Remote api asks to retry later",
			zap.String("endpoint", r.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("retry-after", retryAfter))
		return &domain.UnavailableError{StatusCode: resp.StatusCode, RetryAfter: retryAfter}
	}

	detail := readDetail(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("unexpected status for request",
			zap.String("endpoint", r.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
	}
	return &domain.RemoteError{StatusCode: resp.StatusCode, Detail: detail}
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRemoteCall(endpoint, status, time.Since(start))
	}
}

// parseRetryAfter accepts both delay-seconds and HTTP-date forms. A
// malformed header falls back to defaultRetryAfter; a missing one to zero.
func parseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if sec, err := strconv.Atoi(header); err == nil && sec >= 0 {
		return time.Duration(sec) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
		return 0
	}
	return defaultRetryAfter
}

// readDetail extracts the server's "detail" field, which is either a string
// or a list of validation errors.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil || len(er.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if err := json.Unmarshal(er.Detail, &s); err == nil {
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, er.Detail); err != nil {
		return string(er.Detail)
	}
	return compact.String()
}

// SessionClient is a Client bound to one user's remote api token.
type SessionClient struct {
	client *Client
	token  string
}

var _ port.RemoteAPI = (*SessionClient)(nil)

func (s *SessionClient) do(ctx context.Context, r *request, out any) error {
	return s.client.do(ctx, s.token, r, out)
}

func (s *SessionClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	var resp userDTO
	err := s.do(ctx, &request{
		endpoint: "auth.me",
		method:   http.MethodGet,
		path:     "/auth/me",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}
