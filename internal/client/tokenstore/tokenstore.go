// Package tokenstore persists the reader's credential between CLI runs.
package tokenstore

import (
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/novel-reader/internal/domain"
)

// ErrCorrupt is returned when the stored credential cannot be decoded.
var ErrCorrupt = errors.New("stored credential is corrupt")

// UserSnapshot is the cached copy of the signed-in user.
type UserSnapshot struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email,omitempty"`
	Role     domain.Role `json:"role"`
	Coins    int64       `json:"coins"`
	Avatar   string      `json:"avatar,omitempty"`
}

// Credential is the token, when it was issued, and the user it belongs to.
// The three always change together.
type Credential struct {
	Token    string
	IssuedAt time.Time
	User     UserSnapshot
}

// Valid reports whether the credential carries both a token and a user.
func (c Credential) Valid() bool {
	return c.Token != "" && c.User.ID != ""
}

// Store loads, saves and clears the credential as one unit.
type Store interface {
	// Load returns false when nothing usable is persisted.
	Load() (Credential, bool, error)
	Save(cred Credential) error
	Clear() error
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credential
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Credential, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return Credential{}, false, nil
	}
	return *m.cred, true, nil
}

func (m *MemoryStore) Save(cred Credential) error {
	if !cred.Valid() {
		return errors.New("credential requires token and user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &cred
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}
