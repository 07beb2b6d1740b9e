package router

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFlag bool

func (a *authFlag) IsAuthenticated() bool { return bool(*a) }

func TestAuthGuard(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		to            string
		wantLocation  string
		wantRedirect  bool
	}{
		{"anonymous to protected route", false, "/orders", RouteLogin, true},
		{"anonymous to landing", false, "/", RouteLogin, true},
		{"anonymous to login", false, "/login", RouteLogin, false},
		{"authenticated to protected route", true, "/orders", "/orders", false},
		{"authenticated stays on login", true, "/login", RouteLogin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := authFlag(tt.authenticated)
			r := New(zerolog.Nop())
			r.BeforeEach(AuthGuard(&flag))

			res, err := r.Push(context.Background(), tt.to)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLocation, res.Location)
			assert.Equal(t, tt.wantRedirect, res.Redirected)
			assert.Equal(t, tt.wantLocation, r.Current())
		})
	}
}

func TestRouter_GuardSeesLiveState(t *testing.T) {
	flag := authFlag(true)
	r := New(zerolog.Nop())
	r.BeforeEach(AuthGuard(&flag))

	res, err := r.Push(context.Background(), "/warehouses")
	require.NoError(t, err)
	assert.Equal(t, "/warehouses", res.Location)

	// Logging out flips the state; the very next navigation must redirect.
	flag = false
	res, err = r.Push(context.Background(), "/warehouses")
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, res.Location)
	assert.Equal(t, []string{"/", "/warehouses"}, r.History())
}

func TestRouter_RedirectLoop(t *testing.T) {
	r := New(zerolog.Nop())
	r.BeforeEach(func(from, to string) Decision {
		if to == "/a" {
			return RedirectTo("/b")
		}
		return RedirectTo("/a")
	})

	_, err := r.Push(context.Background(), "/a")
	assert.ErrorIs(t, err, ErrRedirectLoop)
	assert.Equal(t, RouteLanding, r.Current())
}

func TestRouter_AfterEach(t *testing.T) {
	r := New(zerolog.Nop())
	var seen []Result
	r.AfterEach(func(res Result) { seen = append(seen, res) })

	require.NoError(t, r.Navigate(context.Background(), "incidents/"))

	require.Len(t, seen, 1)
	assert.Equal(t, "/incidents", seen[0].Location)
}

func TestRouter_AfterEachRegisteredDuringNavigation(t *testing.T) {
	r := New(zerolog.Nop())
	var late []string
	r.AfterEach(func(res Result) {
		r.AfterEach(func(res Result) { late = append(late, res.Location) })
	})

	require.NoError(t, r.Navigate(context.Background(), "/orders"))
	assert.Empty(t, late)

	require.NoError(t, r.Navigate(context.Background(), "/machines"))
	assert.Equal(t, []string{"/machines"}, late)
}

func TestRouter_CancelledContext(t *testing.T) {
	r := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Navigate(ctx, "/orders")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RouteLanding, r.Current())
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":               "/",
		"/":              "/",
		"login":          "/login",
		"/login/":        "/login",
		"/orders?page=2": "/orders",
		"/a/b#top":       "/a/b",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}
