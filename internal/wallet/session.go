package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/gagliardetto/solana-go"
)

// SessionStore remembers which connector was authorized on each network and
// keeps the per-network burner keypairs. Files are written with 0600 perms.
//
//	macOS:   ~/Library/Caches/solsend/
//	Linux:   ~/.cache/solsend/
//	Windows: %LocalAppData%\solsend\
type SessionStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionStore returns a store rooted at dir.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// DefaultSessionStore returns the per-user session store.
func DefaultSessionStore() *SessionStore {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return NewSessionStore(filepath.Join(dir, "solsend"))
}

// Dir returns the directory the store writes to.
func (s *SessionStore) Dir() string { return s.dir }

func (s *SessionStore) sessionPath() string {
	return filepath.Join(s.dir, "session.json")
}

func (s *SessionStore) burnerPath(n chain.Network) string {
	return filepath.Join(s.dir, "burner-"+string(n)+".json")
}

// load returns an empty map (never nil) on any error.
func (s *SessionStore) load() map[string]string {
	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *SessionStore) save(m map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.sessionPath(), data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(s.sessionPath(), 0o600)
	return nil
}

// Remember records connector as authorized on network.
func (s *SessionStore) Remember(n chain.Network, connector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[string(n)] = connector
	return s.save(m)
}

// Remembered returns the connector last authorized on network.
func (s *SessionStore) Remembered(n chain.Network) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[string(n)]
	return v, ok && v != ""
}

// Forget drops the authorization for network.
func (s *SessionStore) Forget(n chain.Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	if _, ok := m[string(n)]; !ok {
		return nil
	}
	delete(m, string(n))
	return s.save(m)
}

// Clear removes every remembered authorization. Burner keys are kept.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// BurnerKey loads the burner keypair for network. It returns os.ErrNotExist
// (wrapped) when none has been created yet.
func (s *SessionStore) BurnerKey(n chain.Network) (solana.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.burnerPath(n)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading burner key: %w", err)
	}
	return key, nil
}

// SaveBurnerKey persists key as the burner for network.
func (s *SessionStore) SaveBurnerKey(n chain.Network, key solana.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteKeygenFile(s.burnerPath(n), key)
}

// HasBurnerKey reports whether a burner keypair exists for network.
func (s *SessionStore) HasBurnerKey(n chain.Network) bool {
	_, err := os.Stat(s.burnerPath(n))
	return err == nil
}
