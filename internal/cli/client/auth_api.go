package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minimalprod/erpctl/internal/cli/session"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthAPI performs the authentication exchanges. Requests go through the
// public client; logout and me carry the token they are given explicitly
// so a rejected token never triggers the 401 redirect.
type AuthAPI struct {
	client *Client
}

var _ session.Exchanger = (*AuthAPI)(nil)

// NewAuthAPI returns an exchanger backed by a public client
func NewAuthAPI(public *Client) *AuthAPI {
	return &AuthAPI{client: public}
}

// Login authenticates the user and returns the token and identity
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*session.LoginResponse, error) {
	var resp session.LoginResponse
	err := a.client.PostJSON(ctx, "/api/auth/login", LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", session.ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	return &resp, nil
}

// Logout asks the server to invalidate token
func (a *AuthAPI) Logout(ctx context.Context, token string) error {
	req, err := a.client.newRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.send(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Me fetches the profile of the token's owner
func (a *AuthAPI) Me(ctx context.Context, token string) (*session.User, error) {
	req, err := a.client.newRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user session.User
	if err := decodeBody(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
