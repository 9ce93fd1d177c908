package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileRecord is the on-disk layout. User is kept as serialized JSON so the
// file mirrors the token/user/tokenTimestamp entries of the web client.
type fileRecord struct {
	Token          string `json:"token"`
	User           string `json:"user"`
	TokenTimestamp int64  `json:"tokenTimestamp"`
}

// FileStore keeps the credential in a single 0600 file. Writes go through a
// temp file and rename so readers never see half a credential.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the credential file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (Credential, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("read credential: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Credential{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Token == "" || rec.User == "" {
		return Credential{}, false, nil
	}
	var user UserSnapshot
	if err := json.Unmarshal([]byte(rec.User), &user); err != nil {
		return Credential{}, false, fmt.Errorf("%w: user: %v", ErrCorrupt, err)
	}

	cred := Credential{Token: rec.Token, User: user}
	if rec.TokenTimestamp > 0 {
		cred.IssuedAt = time.UnixMilli(rec.TokenTimestamp)
	}
	if !cred.Valid() {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

func (f *FileStore) Save(cred Credential) error {
	if !cred.Valid() {
		return errors.New("credential requires token and user")
	}
	user, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	rec := fileRecord{Token: cred.Token, User: string(user)}
	if !cred.IssuedAt.IsZero() {
		rec.TokenTimestamp = cred.IssuedAt.UnixMilli()
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return writeAtomic(f.path, raw)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp credential: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod credential: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace credential: %w", err)
	}
	return nil
}
