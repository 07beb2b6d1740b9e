package router

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Well-known routes
const (
	RouteLanding = "/"
	RouteLogin   = "/login"
)

// maxRedirects bounds guard redirect chains
const maxRedirects = 5

// ErrRedirectLoop is returned when guards keep redirecting
var ErrRedirectLoop = errors.New("too many guard redirects")

// Decision is the outcome of a guard for one navigation
type Decision struct {
	// Redirect is the path to go to instead; empty means allow
	Redirect string
}

// Allow lets the navigation proceed unchanged
func Allow() Decision { return Decision{} }

// RedirectTo cancels the navigation and goes to path instead
func RedirectTo(path string) Decision { return Decision{Redirect: path} }

// Guard inspects a navigation before it completes
type Guard func(from, to string) Decision

// Result describes where a navigation ended up
type Result struct {
	Requested  string
	Location   string
	Redirected bool
}

// Router tracks the current location of the client and runs guards on
// every navigation.
type Router struct {
	mu       sync.Mutex
	current  string
	history  []string
	guards   []Guard
	log      zerolog.Logger
	onChange []func(Result)
}

// New returns a router positioned at the landing route
func New(log zerolog.Logger) *Router {
	return &Router{
		current: RouteLanding,
		log:     log.With().Str("component", "router").Logger(),
	}
}

// BeforeEach registers a guard. Guards run in registration order and the
// first redirect wins.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// AfterEach registers a callback run after every completed navigation
func (r *Router) AfterEach(fn func(Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// Navigate satisfies the navigator interfaces of the session store and
// API client.
func (r *Router) Navigate(ctx context.Context, path string) error {
	_, err := r.Push(ctx, path)
	return err
}

// Push navigates to path, following guard redirects, and reports the
// final location.
func (r *Router) Push(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	to := Normalize(path)
	res := Result{Requested: to}

	r.mu.Lock()
	guards := append([]Guard(nil), r.guards...)
	from := r.current
	r.mu.Unlock()

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return res, fmt.Errorf("%w: %s", ErrRedirectLoop, to)
		}

		redirect := ""
		for _, g := range guards {
			if d := g(from, to); d.Redirect != "" {
				redirect = Normalize(d.Redirect)
				break
			}
		}
		if redirect == "" || redirect == to {
			break
		}

		r.log.Debug().Str("from", from).Str("to", to).Str("redirect", redirect).Msg("Navigation redirected")
		to = redirect
		res.Redirected = true
	}

	res.Location = to

	r.mu.Lock()
	if r.current != to {
		r.history = append(r.history, r.current)
	}
	r.current = to
	callbacks := slices.Clone(r.onChange)
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(res)
	}

	return res, nil
}

// Current returns the current location
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns previously visited locations, oldest first
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// Normalize cleans a route path: leading slash, no trailing slash, no
// query string.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	path = "/" + strings.Trim(path, "/")
	return path
}
