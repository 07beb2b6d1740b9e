package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// RouteLogin is where the authenticated client sends the user on a 401
const RouteLogin = "/login"

// TokenSource exposes the current bearer token
type TokenSource interface {
	Token() string
}

// SessionClearer drops the local session
type SessionClearer interface {
	ClearAuth()
}

// Navigator moves the client to another route
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Factory builds API clients that share one base URL and HTTP client
type Factory struct {
	BaseURL    string
	HTTPClient *http.Client
	Version    string

	Session   TokenSource
	Clearer   SessionClearer
	Navigator Navigator
	Logger    zerolog.Logger
}

func (f *Factory) base() *Client {
	c := New(f.BaseURL, f.HTTPClient)
	if f.Version != "" {
		c.SetUserAgent(UserAgent(f.Version))
	}
	return c
}

// Public returns a client for pre-login endpoints. It never attaches
// credentials.
func (f *Factory) Public() *Client {
	return f.base()
}

// Authenticated returns a client that attaches the session's bearer token
// to every request. On a 401 it clears the session, navigates to the login
// route and fails the call with ErrUnauthorized. A 401 for a token the
// session no longer holds fails the call but leaves the session alone.
func (f *Factory) Authenticated() *Client {
	c := f.base()

	c.OnRequest(func(req *http.Request) error {
		if f.Session == nil {
			return nil
		}
		if token := f.Session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	})

	c.OnResponse(func(resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}
		return f.unauthorized(resp)
	})

	return c
}

func (f *Factory) unauthorized(resp *http.Response) error {
	apiErr := newAPIError(resp)
	err := fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)

	sent := strings.TrimPrefix(resp.Request.Header.Get("Authorization"), "Bearer ")
	if f.Session != nil && f.Session.Token() != sent {
		f.Logger.Debug().
			Str("path", resp.Request.URL.Path).
			Msg("Request rejected for a token no longer in use, keeping session")
		return err
	}

	f.Logger.Warn().
		Str("path", resp.Request.URL.Path).
		Str("message", apiErr.Message).
		Msg("Request rejected, clearing session")

	if f.Clearer != nil {
		f.Clearer.ClearAuth()
	}

	if f.Navigator != nil {
		if navErr := f.Navigator.Navigate(resp.Request.Context(), RouteLogin); navErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to navigate to login: %w", navErr))
		}
	}
	return err
}
