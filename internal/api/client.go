// Package api provides a client for the Febos webapp API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"febos_exporter/internal/auth"
)

// DefaultBaseURL is the public Febos webapp.
const DefaultBaseURL = "https://febos.emmeti.com"

const sessionKey = "session"

// ErrAuthentication is returned when the webapp refuses the credentials or
// the session. Callers may log in again and retry once.
var ErrAuthentication = errors.New("authentication failed")

// Options configures a Client.
type Options struct {
	BaseURL     string
	Credentials auth.Credentials
	// Timeout bounds every HTTP request.
	Timeout time.Duration
	// SessionTTL is how long a login is reused before requests report
	// ErrAuthentication.
	SessionTTL time.Duration
}

// Client handles HTTP requests to the Febos API.
type Client struct {
	baseURL    string
	creds      auth.Credentials
	auth       *auth.AuthClient
	httpClient *http.Client
	sessions   *cache.Cache
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewClient creates a new Febos API client. No request is made until Login.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Jar:     jar,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return newClient(opts, httpClient, logger), nil
}

func newClient(opts Options, httpClient *http.Client, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	logger.Debug("API client initialized", "base_url", baseURL)
	return &Client{
		baseURL:    baseURL,
		creds:      opts.Credentials,
		auth:       auth.NewAuthClient(baseURL, httpClient, logger),
		httpClient: httpClient,
		sessions:   cache.New(opts.SessionTTL, 2*opts.SessionTTL),
		sessionTTL: opts.SessionTTL,
		logger:     logger,
	}
}

// session returns the cached login, or ErrAuthentication once it expired.
func (c *Client) session() (*auth.Session, error) {
	v, ok := c.sessions.Get(sessionKey)
	if !ok {
		return nil, fmt.Errorf("%w: no active session", ErrAuthentication)
	}
	return v.(*auth.Session), nil
}

// doRequest performs an authenticated HTTP request and returns the body.
// HTTP 401 and 403 drop the session and map to ErrAuthentication.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("API request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Warn("Session rejected", "method", method, "path", path, "status", resp.StatusCode)
		c.sessions.Delete(sessionKey)
		return nil, fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)
	default:
		c.logger.Warn("Non-200 status", "method", method, "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	c.logger.Debug("API response", "method", method, "path", path, "bytes", len(data))

	return data, nil
}
