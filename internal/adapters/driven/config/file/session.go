package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore persists assessment session state as JSON. Results survive
// between command invocations, so eligibility can be checked in one run
// and the recommendation generated in the next.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

// NewSessionStore creates a session store.
// If configDir is empty, defaults to ~/.grantrag/session.json.
func NewSessionStore(configDir string) (*SessionStore, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	return &SessionStore{
		path: filepath.Join(configDir, "session.json"),
	}, nil
}

// Load returns the persisted session, or an empty session when none has
// been saved yet.
func (s *SessionStore) Load() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	session.EnsureMaps()
	return &session, nil
}

// Save persists the session.
func (s *SessionStore) Save(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Path returns the session file path.
func (s *SessionStore) Path() string {
	return s.path
}
