// Package session tracks the reader's login across CLI runs: it restores a
// persisted credential, keeps it fresh and drops it when the server says it
// is no longer valid.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/tokenstore"
)

// RefreshThreshold is the credential age after which Restore refreshes the
// token instead of only validating it.
const RefreshThreshold = 5 * time.Minute

// ErrNoSession is returned by operations that need a credential.
var ErrNoSession = errors.New("not logged in")

// State is the session lifecycle state.
type State int

const (
	NoSession State = iota
	Cached
	Validating
	Refreshing
)

func (s State) String() string {
	switch s {
	case Cached:
		return "cached"
	case Validating:
		return "validating"
	case Refreshing:
		return "refreshing"
	default:
		return "no-session"
	}
}

// Backend is the part of the API the session needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (*api.AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*api.AuthResult, error)
	Me(ctx context.Context, token string) (tokenstore.UserSnapshot, error)
	Refresh(ctx context.Context, token string) (*api.AuthResult, error)
	Do(req *http.Request) (*http.Response, error)
}

// Authenticator is the session surface other components depend on.
type Authenticator interface {
	IsAuthenticated() bool
	CurrentUser() (tokenstore.UserSnapshot, bool)
	Token() (string, bool)
	Login(ctx context.Context, username, password string) error
	Logout() error
	AuthorizedDo(req *http.Request) (*http.Response, error)
}

// Manager implements Authenticator. Token, user and issue time are always
// read and replaced together under mu.
type Manager struct {
	store   tokenstore.Store
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	state State
	cred  tokenstore.Credential
}

var _ Authenticator = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a manager in NoSession. Call Restore to pick up a
// persisted credential.
func NewManager(store tokenstore.Store, backend Backend, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:   store,
		backend: backend,
		logger:  logger.Named("session"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a credential is held. Cached credentials
// count even before the server has confirmed them.
func (m *Manager) IsAuthenticated() bool {
	return m.State() != NoSession
}

// CurrentUser returns the cached user.
func (m *Manager) CurrentUser() (tokenstore.UserSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession {
		return tokenstore.UserSnapshot{}, false
	}
	return m.cred.User, true
}

// Token returns the bearer token.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession {
		return "", false
	}
	return m.cred.Token, true
}

// Restore loads the persisted credential and reconciles it with the server
// in a single attempt. It returns the resulting state.
func (m *Manager) Restore(ctx context.Context) State {
	if m.Load() == NoSession {
		return NoSession
	}
	return m.Reconcile(ctx)
}

// Load picks up the persisted credential without touching the network. The
// session is Cached afterwards if one was found.
func (m *Manager) Load() State {
	cred, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("discarding unreadable credential", zap.Error(err))
		_ = m.store.Clear()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		m.cred = tokenstore.Credential{}
		m.state = NoSession
		return NoSession
	}
	m.cred = cred
	m.state = Cached
	return Cached
}

// Reconcile checks the held credential with the server.
//
// A credential older than RefreshThreshold is refreshed; if that fails it is
// validated once. A fresh one is only validated. Only an explicit 401 from
// validation logs the reader out; any other failure leaves the credential
// cached.
func (m *Manager) Reconcile(ctx context.Context) State {
	m.mu.Lock()
	if m.state == NoSession {
		m.mu.Unlock()
		return NoSession
	}
	cred := m.cred
	m.mu.Unlock()

	if m.stale(cred) && m.refresh(ctx, cred.Token) {
		return m.State()
	}
	return m.validate(ctx, cred.Token)
}

func (m *Manager) stale(cred tokenstore.Credential) bool {
	if cred.IssuedAt.IsZero() {
		return true
	}
	return m.now().Sub(cred.IssuedAt) > RefreshThreshold
}

func (m *Manager) refresh(ctx context.Context, token string) bool {
	if !m.transition(token, Refreshing) {
		return false
	}
	res, err := m.backend.Refresh(ctx, token)
	if err != nil || res == nil || res.Token == "" {
		m.logger.Info("token refresh failed, validating instead", zap.Error(err))
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession || m.cred.Token != token {
		return true
	}
	next := tokenstore.Credential{Token: res.Token, IssuedAt: m.now(), User: res.User}
	if next.User.ID == "" {
		next.User = m.cred.User
	}
	m.replaceLocked(next)
	m.logger.Debug("token refreshed")
	return true
}

func (m *Manager) validate(ctx context.Context, token string) State {
	if !m.transition(token, Validating) {
		return m.State()
	}
	user, err := m.backend.Me(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession || m.cred.Token != token {
		return m.state
	}
	switch {
	case err == nil:
		next := m.cred
		next.User = user
		m.replaceLocked(next)
	case errors.Is(err, api.ErrUnauthorized):
		m.logger.Info("stored credential rejected, logging out", zap.Error(err))
		m.clearLocked()
	default:
		m.logger.Warn("could not validate session, keeping cached credential", zap.Error(err))
		m.state = Cached
	}
	return m.state
}

// transition moves to next if token is still the held credential.
func (m *Manager) transition(token string, next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession || m.cred.Token != token {
		return false
	}
	m.state = next
	return true
}

// replaceLocked stores cred and returns to Cached. A failed write keeps the
// in-memory credential; the next run will just restore the older one.
func (m *Manager) replaceLocked(cred tokenstore.Credential) {
	if err := m.store.Save(cred); err != nil {
		m.logger.Warn("persist credential", zap.Error(err))
	}
	m.cred = cred
	m.state = Cached
}

func (m *Manager) clearLocked() error {
	err := m.store.Clear()
	m.cred = tokenstore.Credential{}
	m.state = NoSession
	return err
}

// Login signs in and persists the credential.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	res, err := m.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return m.adopt(res)
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	res, err := m.backend.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	return m.adopt(res)
}

func (m *Manager) adopt(res *api.AuthResult) error {
	cred := tokenstore.Credential{Token: res.Token, IssuedAt: m.now(), User: res.User}
	if !cred.Valid() {
		return errors.New("server returned an incomplete credential")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	m.cred = cred
	m.state = Cached
	return nil
}

// Logout drops the credential. It never touches the network.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearLocked()
}

// RefreshUser re-reads the user from the server, e.g. to pick up a coin
// balance after a purchase. A 401 logs the reader out.
func (m *Manager) RefreshUser(ctx context.Context) (tokenstore.UserSnapshot, error) {
	token, ok := m.Token()
	if !ok {
		return tokenstore.UserSnapshot{}, ErrNoSession
	}
	user, err := m.backend.Me(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession || m.cred.Token != token {
		return tokenstore.UserSnapshot{}, ErrNoSession
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			_ = m.clearLocked()
		}
		return tokenstore.UserSnapshot{}, err
	}
	next := m.cred
	next.User = user
	m.replaceLocked(next)
	return user, nil
}

// AuthorizedDo sends a copy of req carrying the bearer token.
func (m *Manager) AuthorizedDo(req *http.Request) (*http.Response, error) {
	token, ok := m.Token()
	if !ok {
		return nil, ErrNoSession
	}
	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return m.backend.Do(authed)
}
