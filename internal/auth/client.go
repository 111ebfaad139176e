// Package auth handles session login against the Febos webapp.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"febos_exporter/internal/types"
)

// LoginPath is the webapp login endpoint, relative to the base URL.
const LoginPath = "/api/v1/login"

// ErrInvalidCredentials is returned when the webapp rejects the login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials holds authentication credentials.
type Credentials struct {
	Username string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token      string
	Login      types.LoginData
	ObtainedAt time.Time
}

// AuthClient performs logins. Session cookies set by the webapp land in the
// jar of the shared http.Client.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAuthClient creates a new authentication client.
func NewAuthClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Authenticate logs in with the given credentials.
func (a *AuthClient) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	a.logger.Debug("Starting authentication", "username", creds.Username)

	body, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Login request failed", "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrInvalidCredentials, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("login endpoint returned %d: %s", res.StatusCode, string(b))
	}

	var login types.LoginData
	if err := json.Unmarshal(b, &login); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}

	a.logger.Info("Authentication successful",
		"username", creds.Username,
		"installations", len(login.InstallationIDList))

	return &Session{
		Token:      login.Token,
		Login:      login,
		ObtainedAt: time.Now(),
	}, nil
}
