package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Keys of the two durable entries mirrored by the store
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// RouteLanding is where Logout navigates once the session is gone
const RouteLanding = "/"

// Storage is the durable key-value mirror of the session.
// Get reports ok=false for an absent key.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Exchanger performs the authentication calls against the API server
type Exchanger interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*User, error)
}

// Navigator moves the client to another route
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Store owns the authentication state. It is the only writer of the
// token and user; everyone else reads through its accessors.
//
// Every state change bumps a generation counter. An exchange captures
// the generation when it starts and only applies its result if the
// counter has not moved, so a slow response can never overwrite a newer
// login or resurrect a session that was logged out meanwhile.
type Store struct {
	mu       sync.RWMutex
	token    string
	user     *User
	inflight int
	gen      uint64

	storage   Storage
	exchanger Exchanger
	nav       Navigator
	log       zerolog.Logger
}

// New creates an empty store. Call Hydrate to load the persisted session.
func New(storage Storage, exchanger Exchanger, nav Navigator, log zerolog.Logger) *Store {
	return &Store{
		storage:   storage,
		exchanger: exchanger,
		nav:       nav,
		log:       log.With().Str("component", "session").Logger(),
	}
}

// SetNavigator replaces the navigator. The router and the store depend on
// each other, so one of them has to be wired after construction.
func (s *Store) SetNavigator(nav Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav = nav
}

// Hydrate reads the persisted session into memory. Storage is never read
// again afterwards. A half-written or undecodable session is discarded.
func (s *Store) Hydrate() error {
	if s.storage == nil {
		return nil
	}

	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	rawUser, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read stored user: %w", err)
	}

	var user *User
	if hasUser && rawUser != "" {
		var u User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			s.log.Warn().Err(err).Msg("Discarding undecodable stored user")
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasToken || token == "" || user == nil {
		if hasToken || hasUser {
			s.log.Debug().Msg("Stored session incomplete, clearing")
			s.deleteStoredLocked()
		}
		s.token, s.user = "", nil
		return nil
	}

	s.token, s.user = token, user
	s.log.Debug().Str("username", user.Username).Msg("Session restored from storage")
	return nil
}

// Token returns the current bearer token, or "" when anonymous
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current identity, or nil when anonymous
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.clone()
}

// IsAuthenticated is true iff both a token and a user are held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

// Loading is true while a login or restore exchange is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Snapshot returns all session fields read under one lock
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Token:           s.token,
		User:            s.user.clone(),
		IsAuthenticated: s.authenticatedLocked(),
		Loading:         s.inflight > 0,
	}
}

func (s *Store) authenticatedLocked() bool {
	return s.token != "" && s.user != nil
}

// Login exchanges credentials for a session. On success token and user
// are replaced together and written through to storage. On any failure
// the previous state is left untouched and the error is returned.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.inflight++
	s.mu.Unlock()
	defer s.done()

	resp, err := s.exchanger.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user, err := resp.identity()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrSuperseded
	}

	if err := s.writeThroughLocked(resp.Token, user); err != nil {
		return err
	}
	s.token, s.user = resp.Token, user

	s.log.Info().Str("username", user.Username).Strs("roles", user.Roles).Msg("Logged in")
	return nil
}

// TryLogin is Login for callers that only need a yes/no answer.
// Failures are logged and reported as false.
func (s *Store) TryLogin(ctx context.Context, username, password string) bool {
	if err := s.Login(ctx, username, password); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("Login failed")
		return false
	}
	return true
}

// Logout drops the session locally, tells the server to invalidate the
// token (best effort) and navigates to the landing route.
func (s *Store) Logout(ctx context.Context) error {
	token := s.clear()

	if token != "" && s.exchanger != nil {
		if err := s.exchanger.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("Server-side logout failed, session cleared locally")
		}
	}

	s.mu.RLock()
	nav := s.nav
	s.mu.RUnlock()
	if nav == nil {
		return nil
	}
	return nav.Navigate(ctx, RouteLanding)
}

// ClearAuth resets memory and storage without any network call.
// Calling it on an empty session is a no-op.
func (s *Store) ClearAuth() {
	s.clear()
}

// CheckAuth revalidates the held token against the server and refreshes
// the user. Without a token it returns false without network access. Any
// failure clears the session. Loading is true for the whole call.
func (s *Store) CheckAuth(ctx context.Context) bool {
	s.mu.Lock()
	token := s.token
	gen := s.gen
	s.inflight++
	s.mu.Unlock()
	defer s.done()

	if token == "" {
		return false
	}

	user, err := s.exchanger.Me(ctx, token)
	if err == nil && (user == nil || user.Username == "") {
		err = fmt.Errorf("%w: profile without username", ErrMalformedResponse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug().Msg("Session changed during restore, dropping result")
		return s.authenticatedLocked()
	}

	if err != nil {
		s.log.Warn().Err(err).Msg("Session restore failed, clearing session")
		s.clearLocked()
		return false
	}

	user = user.clone()
	if err := s.writeThroughLocked(token, user); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist restored user")
	}
	s.user = user
	return true
}

func (s *Store) done() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// clear resets the session and returns the token that was held
func (s *Store) clear() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() string {
	token := s.token
	s.gen++
	s.token, s.user = "", nil
	s.deleteStoredLocked()
	return token
}

func (s *Store) deleteStoredLocked() {
	if s.storage == nil {
		return
	}
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.storage.Delete(key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("Failed to delete stored session entry")
		}
	}
}

// writeThroughLocked mirrors token and user to storage. If either write
// fails the previous entries are put back so storage never holds a token
// of one login next to the user of another.
func (s *Store) writeThroughLocked(token string, user *User) error {
	if s.storage == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	err = s.storage.Set(KeyUser, string(data))
	if err == nil {
		err = s.storage.Set(KeyToken, token)
	}
	if err == nil {
		return nil
	}

	if rerr := s.restoreStoredLocked(); rerr != nil {
		err = errors.Join(err, rerr)
	}
	return fmt.Errorf("failed to persist session: %w", err)
}

func (s *Store) restoreStoredLocked() error {
	if !s.authenticatedLocked() {
		var errs []error
		for _, key := range []string{KeyToken, KeyUser} {
			errs = append(errs, s.storage.Delete(key))
		}
		return errors.Join(errs...)
	}

	data, err := json.Marshal(s.user)
	if err != nil {
		return err
	}
	return errors.Join(
		s.storage.Set(KeyUser, string(data)),
		s.storage.Set(KeyToken, s.token),
	)
}
