// Package devopness is a small client for the Devopness REST API: login, projects,
// environments, servers, applications, pipelines, credentials and static cloud
// provider data.
package devopness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.devopness.com"
	DefaultWebURL  = "https://app.devopness.com"

	// actionIDHeader carries the ID of the action started by a request.
	actionIDHeader = "X-Devopness-Action-Id"
)

// ErrCredentialsMissing is returned by EnsureReady when no login credentials are set.
var ErrCredentialsMissing = errors.New("DEVOPNESS_USER_EMAIL and DEVOPNESS_USER_PASSWORD must be set")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("devopness api: status %d: %s", e.StatusCode, msg)
	}
	fields := make([]string, 0, len(e.Errors))
	for field, errs := range e.Errors {
		fields = append(fields, field+": "+strings.Join(errs, ", "))
	}
	slices.Sort(fields)
	return fmt.Sprintf("devopness api: status %d: %s (%s)", e.StatusCode, msg, strings.Join(fields, "; "))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == code
}

// Credentials are the user login of the API.
type Credentials struct {
	Email    string
	Password string
}

// Client calls the Devopness API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	webURL     string
	http       *http.Client
	creds      Credentials
	session    *Session
	logger     *slog.Logger
	debug      bool
	maxRetries int
	baseDelay  time.Duration
	now        func() time.Time

	loginMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (default DefaultBaseURL).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithWebURL sets the web application URL used for action links (default DefaultWebURL).
func WithWebURL(u string) Option {
	return func(c *Client) { c.webURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCredentials sets the login used by EnsureReady.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebug logs every request and response status at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// WithMaxRetries sets how many times a GET request is attempted on rate limiting
// or gateway errors. Requests that change state are never retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		webURL:     DefaultWebURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		session:    &Session{},
		logger:     slog.Default(),
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the client's login session.
func (c *Client) Session() *Session { return c.session }

// ActionURL returns the web page that shows the progress of an action.
func (c *Client) ActionURL(actionID int) string {
	return fmt.Sprintf("%s/actions/%d", c.webURL, actionID)
}

// EnsureReady logs in with the configured credentials unless a token is cached
// and not about to expire.
func (c *Client) EnsureReady(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.session.Valid(c.now()) {
		return nil
	}
	if c.creds.Email == "" || c.creds.Password == "" {
		return ErrCredentialsMissing
	}
	_, err := c.Login(ctx, c.creds.Email, c.creds.Password)
	return err
}

// Login authenticates a user and caches the returned access token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	var tok Token
	if _, err := c.do(ctx, http.MethodPost, "/users/login", nil, loginRequest{Email: email, Password: password}, &tok); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("login: response has no access token")
	}
	c.session.Set(tok, c.now())
	return &tok, nil
}

// do sends one request and decodes a JSON response into out (when non-nil).
// It returns the response headers of the final attempt.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}
	attempts := 1
	if method == http.MethodGet && c.maxRetries > 1 {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := c.backoffDelay(attempt - 1)
			c.logger.WarnContext(ctx, "devopness request failed, retrying",
				"path", path, "attempt", attempt+1, "max_retries", attempts, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		header, err := c.send(ctx, method, path, query, payload, out)
		if err == nil {
			return header, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", attempts, lastErr)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if c.debug {
		c.logger.DebugContext(ctx, "devopness request",
			"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.Clear()
		}
		return nil, parseAPIError(resp.StatusCode, data)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.Header, nil
}

func parseAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Message
		apiErr.Errors = body.Errors
	} else if msg := strings.TrimSpace(string(data)); len(msg) > 0 && len(msg) <= 200 {
		apiErr.Message = msg
	}
	return apiErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	return time.Duration(float64(c.baseDelay) * math.Pow(2, float64(attempt)))
}

// actionID reads the ID of the action started by a request from its response headers.
func actionID(h http.Header) int {
	id, _ := strconv.Atoi(h.Get(actionIDHeader))
	return id
}
