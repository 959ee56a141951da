package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"latexify/internal/errors"
	"latexify/internal/types"

	"github.com/google/uuid"
)

// Store persists the workflow Session as a JSON snapshot so the document
// survives across CLI invocations
type Store struct {
	path   string
	logger *errors.Logger
}

// NewStore creates a session store at the given path
func NewStore(path string, logger *errors.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the session file location
func (s *Store) Path() string {
	return s.path
}

// NewSession creates a fresh idle session
func NewSession() *types.Session {
	return &types.Session{
		ID:    uuid.New().String(),
		State: types.StateIdle,
	}
}

// Load reads the session snapshot. A missing file yields a fresh session
// rather than an error.
func (s *Store) Load() (*types.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSession(), nil
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read session file %s", s.path), err)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Session file %s is corrupted", s.path), err)
	}

	// Snapshots never capture an operation mid-flight; a transient state in
	// the file means the previous run died during one.
	switch session.State {
	case types.StateGenerating, types.StateCompiling, types.StateUpdating:
		if s.logger != nil {
			s.logger.Warn("Session file recorded an interrupted operation",
				"state", string(session.State))
		}
		if session.HasPDF() {
			session.State = types.StateReady
		} else {
			session.State = types.StateFailed
		}
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	return &session, nil
}

// Save writes the session snapshot atomically (temp file plus rename)
func (s *Store) Save(session *types.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to encode session", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOError(errors.ErrCodeUnexpected,
			fmt.Sprintf("Failed to create session directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeUnexpected,
			"Failed to create temporary session file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeUnexpected,
			"Failed to write session file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeUnexpected,
			"Failed to flush session file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeUnexpected,
			fmt.Sprintf("Failed to replace session file %s", s.path), err)
	}

	return nil
}

// Reset removes the session snapshot
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(errors.ErrCodeUnexpected,
			fmt.Sprintf("Failed to remove session file %s", s.path), err)
	}
	return nil
}
