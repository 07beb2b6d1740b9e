// Package app wires the session store, router and API clients of one erpctl
// invocation.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minimalprod/erpctl/internal/cli/auth"
	"github.com/minimalprod/erpctl/internal/cli/client"
	cliconfig "github.com/minimalprod/erpctl/internal/cli/config"
	"github.com/minimalprod/erpctl/internal/cli/router"
	"github.com/minimalprod/erpctl/internal/cli/serverselect"
	"github.com/minimalprod/erpctl/internal/cli/session"
	"github.com/minimalprod/erpctl/internal/cli/userconfig"
	"github.com/minimalprod/erpctl/internal/config"
)

// ErrLoginRequired is reported when a guarded command runs without a
// valid session.
var ErrLoginRequired = errors.New("session expired or not authenticated. Please run 'erpctl login'")

// Storage backends
const (
	StorageKeyring = "keyring"
	StorageFile    = "file"
)

// App is the state shared by the commands of one invocation
type App struct {
	Server  cliconfig.Server
	Session *session.Store
	Router  *router.Router
	Clients *client.Factory
	Auth    *client.AuthAPI
	Log     zerolog.Logger
}

// Options control how the app is built
type Options struct {
	// ServerAlias picks a server from erpctl.yaml
	ServerAlias string
	Version     string
	// Storage replaces the configured storage backend
	Storage    session.Storage
	HTTPClient *http.Client
}

// New resolves the server, loads the persisted session and wires the
// guard and the API clients.
func New(cfg *config.Config, opts Options, log zerolog.Logger) (*App, error) {
	server, err := resolveServer(cfg, opts.ServerAlias)
	if err != nil {
		return nil, err
	}

	storage := opts.Storage
	if storage == nil {
		storage = newStorage(cfg.Client.Storage, server.URL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Client.Timeout}
	}

	r := router.New(log)
	factory := &client.Factory{
		BaseURL:    server.URL,
		HTTPClient: httpClient,
		Version:    opts.Version,
		Navigator:  r,
		Logger:     log.With().Str("component", "client").Logger(),
	}
	authAPI := client.NewAuthAPI(factory.Public())

	store := session.New(storage, authAPI, r, log)
	factory.Session = store
	factory.Clearer = store
	r.BeforeEach(router.AuthGuard(store))

	if err := store.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	log.Debug().Str("server", server.URL).Bool("authenticated", store.IsAuthenticated()).Msg("App ready")

	return &App{
		Server:  server,
		Session: store,
		Router:  r,
		Clients: factory,
		Auth:    authAPI,
		Log:     log,
	}, nil
}

func newStorage(kind, serverURL string) session.Storage {
	if kind == StorageFile {
		return userconfig.NewFileStorage(serverURL)
	}
	return auth.NewKeyringStorage(serverURL)
}

// resolveServer picks the API server: ERPCTL_API_URL wins over erpctl.yaml
func resolveServer(cfg *config.Config, alias string) (cliconfig.Server, error) {
	if cfg.Client.APIURL != "" && alias == "" {
		return cliconfig.Server{Alias: "env", URL: strings.TrimRight(cfg.Client.APIURL, "/")}, nil
	}

	projectConfig, err := cliconfig.LoadFromCurrentDir()
	if err != nil {
		return cliconfig.Server{}, fmt.Errorf("failed to load config: %w\nRun 'erpctl init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(projectConfig, alias)
	if err != nil {
		return cliconfig.Server{}, err
	}
	return *server, nil
}

// Enter navigates to route and reports ErrLoginRequired when the guard
// sends the user to the login route instead.
func (a *App) Enter(ctx context.Context, route string) error {
	res, err := a.Router.Push(ctx, route)
	if err != nil {
		return err
	}
	if res.Redirected && res.Location == router.RouteLogin {
		return ErrLoginRequired
	}
	return nil
}

// Translate maps client errors to the messages shown to the user
func Translate(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return ErrLoginRequired
	}
	return err
}

type ctxKey struct{}

// NewContext returns a context carrying a
func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the app stored by NewContext
func FromContext(ctx context.Context) (*App, bool) {
	a, ok := ctx.Value(ctxKey{}).(*App)
	return a, ok
}
