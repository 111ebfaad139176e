package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"

	"febos_exporter/internal/auth"
	"febos_exporter/internal/types"
)

// Login authenticates with the configured credentials and caches the
// session for the session TTL. Rejected credentials map to ErrAuthentication.
func (c *Client) Login(ctx context.Context) (*types.LoginData, error) {
	s, err := c.auth.Authenticate(ctx, c.creds)
	if err != nil {
		c.sessions.Delete(sessionKey)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return nil, err
	}

	c.sessions.Set(sessionKey, s, cache.DefaultExpiration)
	c.logger.Debug("Session cached", "ttl", c.sessionTTL)

	login := s.Login
	return &login, nil
}
