// Package session owns the operator's credential lifecycle: exchanging a
// username and password for a bearer token, persisting it across runs,
// verifying it at startup and tearing it down on logout or rejection.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pigeonsec/kestrel-admin/pkg/client"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// Status is the position of the session in its lifecycle.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusVerifying
	StatusAuthenticated
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusVerifying:
		return "verifying"
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var (
	// ErrBusy is returned when a login would overlap a restore in flight.
	ErrBusy = errors.New("session: verification in progress")
	// ErrNothingToRestore is returned by Restore when no persisted token was found.
	ErrNothingToRestore = errors.New("session: no persisted token")
	// ErrEmptyToken is returned when the backend accepts a login but hands back no token.
	ErrEmptyToken = errors.New("session: backend returned an empty token")
	// ErrNoAuthenticator is returned when login or restore runs before SetAuthenticator.
	ErrNoAuthenticator = errors.New("session: no authenticator configured")
)

// Authenticator performs the two backend calls the session depends on.
// *client.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	Verify(ctx context.Context) (*domain.User, error)
}

// Session is a point-in-time copy of the manager's state.
type Session struct {
	Token  string
	User   *domain.User
	Status Status
}

// Manager is the single process-wide owner of the credential. Store writes
// happen under mu so the persisted token always matches the one in memory.
type Manager struct {
	mu        sync.RWMutex
	store     TokenStore
	auth      Authenticator
	log       zerolog.Logger
	token     string
	user      *domain.User
	status    Status
	restoring bool
	epoch     uint64
	listeners []func(from, to Status)
}

// NewManager loads any persisted token. The manager starts in StatusVerifying
// when one was found, StatusUnauthenticated otherwise.
func NewManager(store TokenStore, log zerolog.Logger) *Manager {
	m := &Manager{store: store, log: log, status: StatusUnauthenticated}
	tok, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("read persisted token")
		return m
	}
	if tok != "" {
		m.token = tok
		m.status = StatusVerifying
	}
	return m
}

// SetAuthenticator wires the backend used by Login and Restore.
func (m *Manager) SetAuthenticator(a Authenticator) {
	m.mu.Lock()
	m.auth = a
	m.mu.Unlock()
}

// OnChange registers fn to be called after every status transition.
// Callbacks run without the manager's lock held.
func (m *Manager) OnChange(fn func(from, to Status)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Login exchanges credentials for a token. On success the token is persisted
// and the session becomes authenticated; on failure the state is untouched.
// A stored token that was never verified is simply replaced.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.User, error) {
	m.mu.RLock()
	auth, busy := m.auth, m.restoring
	m.mu.RUnlock()
	if busy {
		return nil, ErrBusy
	}
	if auth == nil {
		return nil, ErrNoAuthenticator
	}

	resp, err := auth.Login(ctx, username, password)
	if err != nil {
		m.log.Info().Str("username", username).Err(err).Msg("login rejected")
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	if resp.Token == "" {
		return nil, ErrEmptyToken
	}

	user := resp.User
	m.mu.Lock()
	if err := m.store.Save(resp.Token); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("session.Login: persist token: %w", err)
	}
	from := m.status
	m.token = resp.Token
	m.user = &user
	m.status = StatusAuthenticated
	m.epoch++
	m.mu.Unlock()

	m.notify(from, StatusAuthenticated)
	return &user, nil
}

// Restore verifies the token found at startup. Success authenticates the
// session with the returned profile; any failure discards the persisted
// token and leaves the session unauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.status != StatusVerifying {
		m.mu.Unlock()
		return ErrNothingToRestore
	}
	if m.restoring {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.auth == nil {
		m.mu.Unlock()
		return ErrNoAuthenticator
	}
	m.restoring = true
	auth := m.auth
	m.mu.Unlock()

	user, err := auth.Verify(ctx)

	m.mu.Lock()
	m.restoring = false
	if m.status != StatusVerifying {
		// Logged out while the verification was in flight.
		m.mu.Unlock()
		return ErrNothingToRestore
	}
	if err != nil {
		m.token = ""
		m.user = nil
		m.status = StatusUnauthenticated
		m.epoch++
		m.clearStoreLocked()
		m.mu.Unlock()
		m.log.Info().Err(err).Msg("persisted token rejected")
		m.notify(StatusVerifying, StatusUnauthenticated)
		return fmt.Errorf("session.Restore: %w", err)
	}
	m.user = user
	m.status = StatusAuthenticated
	m.epoch++
	m.mu.Unlock()

	m.notify(StatusVerifying, StatusAuthenticated)
	return nil
}

// Logout drops the credential from memory and storage unconditionally.
func (m *Manager) Logout() {
	m.mu.Lock()
	from := m.status
	m.token = ""
	m.user = nil
	m.status = StatusUnauthenticated
	m.epoch++
	m.clearStoreLocked()
	m.mu.Unlock()

	if from != StatusUnauthenticated {
		m.notify(from, StatusUnauthenticated)
	}
}

// Invalidate handles a backend rejection of the credential. An authenticated
// session passes through StatusExpired and ends unauthenticated with storage
// cleared. It is a no-op when there is no credential to invalidate.
func (m *Manager) Invalidate(cause error) {
	m.invalidate(cause, func() bool { return true })
}

// Expire is Invalidate restricted to the credential identified by epoch. A
// rejection that arrives after the credential was replaced is ignored.
// It reports whether the session was invalidated.
func (m *Manager) Expire(epoch uint64, cause error) bool {
	return m.invalidate(cause, func() bool { return m.epoch == epoch })
}

func (m *Manager) invalidate(cause error, current func() bool) bool {
	m.mu.Lock()
	if m.token == "" || !current() {
		m.mu.Unlock()
		return false
	}
	from := m.status
	m.token = ""
	m.user = nil
	m.status = StatusExpired
	m.epoch++
	m.clearStoreLocked()
	m.mu.Unlock()

	m.log.Info().Err(cause).Msg("session invalidated by backend")
	m.notify(from, StatusExpired)

	m.mu.Lock()
	if m.status != StatusExpired {
		// A login completed in between; leave it alone.
		m.mu.Unlock()
		return true
	}
	m.status = StatusUnauthenticated
	m.mu.Unlock()
	m.notify(StatusExpired, StatusUnauthenticated)
	return true
}

// Credential returns the bearer token to attach, or false when the session
// holds none. It is read on every outbound call.
func (m *Manager) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.status {
	case StatusAuthenticated, StatusVerifying:
		return m.token, m.token != ""
	}
	return "", false
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Session{Token: m.token, Status: m.status}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Status returns the current lifecycle status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Epoch identifies the current credential. It changes on every login,
// restore outcome, logout and invalidation.
func (m *Manager) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// CanAdministerFeeds reports whether the signed-in operator may change feed tiers.
func (m *Manager) CanAdministerFeeds() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status == StatusAuthenticated && m.user.CanAdministerFeeds()
}

// clearStoreLocked drops the persisted token. Callers hold mu.
func (m *Manager) clearStoreLocked() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clear persisted token")
	}
}

func (m *Manager) notify(from, to Status) {
	m.log.Debug().Stringer("from", from).Stringer("to", to).Msg("session status")
	m.mu.RLock()
	listeners := append([]func(from, to Status){}, m.listeners...)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(from, to)
	}
}
