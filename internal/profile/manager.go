package profile

import (
	"context"
	"encoding/base64"
	"sync"

	"latexify/internal/backend"
	"latexify/internal/errors"
	"latexify/internal/types"
)

// Backend is the slice of the backend client the manager drives
type Backend interface {
	SaveResume(ctx context.Context, req backend.SaveResumeRequest) (*types.SavedArtifact, error)
	ListResumes(ctx context.Context, uid string) ([]types.SavedArtifact, error)
	DeleteResume(ctx context.Context, id string) error
	GetProfile(ctx context.Context, uid string) (*types.Profile, error)
	UpdateProfile(ctx context.Context, profile types.Profile) (*types.Profile, error)
	SaveUser(ctx context.Context, identity types.UserIdentity) error
	DownloadPDF(ctx context.Context, pdf []byte) ([]byte, error)
}

// Manager handles saved resumes and the user profile for the configured
// identity. All operations require authentication and check it locally
// before any network call.
type Manager struct {
	mu            sync.Mutex
	pendingDelete string

	backend  Backend
	identity *types.UserIdentity // nil when no identity is configured
	logger   *errors.Logger
}

// NewManager creates a profile manager. identity may be nil; every
// operation then fails with a local authentication error.
func NewManager(be Backend, identity *types.UserIdentity, logger *errors.Logger) *Manager {
	return &Manager{backend: be, identity: identity, logger: logger}
}

// Identity returns the configured identity, or nil
func (m *Manager) Identity() *types.UserIdentity {
	return m.identity
}

func (m *Manager) requireIdentity() (*types.UserIdentity, error) {
	if m.identity == nil || m.identity.UID == "" {
		return nil, errors.NewAuthError(errors.ErrCodeNotAuthenticated,
			"Sign-in is required; configure user.uid to save and manage resumes", nil)
	}
	return m.identity, nil
}

// Save stores the session's compiled resume as a new artifact. The session
// is never mutated; repeated saves create independent artifacts.
func (m *Manager) Save(ctx context.Context, session *types.Session, title, description string) (*types.SavedArtifact, error) {
	identity, err := m.requireIdentity()
	if err != nil {
		return nil, err
	}
	if !session.HasPDF() {
		return nil, errors.NewValidationError(errors.ErrCodeNoPDF,
			"Compile a resume before saving", nil)
	}

	artifact, err := m.backend.SaveResume(ctx, backend.SaveResumeRequest{
		UserID:      identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		PDFBase64:   base64.StdEncoding.EncodeToString(session.CompiledPDF),
		LatexCode:   session.WorkingLatex,
		Title:       title,
		Description: description,
		TemplateID:  session.TemplateID,
	})
	if err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("Resume saved", "artifact_id", artifact.ID, "title", title)
	}
	return artifact, nil
}

// List returns the saved artifacts belonging to the configured user
func (m *Manager) List(ctx context.Context) ([]types.SavedArtifact, error) {
	identity, err := m.requireIdentity()
	if err != nil {
		return nil, err
	}
	return m.backend.ListResumes(ctx, identity.UID)
}

// RequestDelete stages an artifact for deletion. No network call happens
// until ConfirmDelete.
func (m *Manager) RequestDelete(id string) error {
	if _, err := m.requireIdentity(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = id
	return nil
}

// PendingDelete returns the artifact id staged for deletion, if any
func (m *Manager) PendingDelete() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingDelete
}

// ConfirmDelete performs the staged deletion
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	id := m.pendingDelete
	m.mu.Unlock()

	if id == "" {
		return errors.NewValidationError(errors.ErrCodeDeleteFailed,
			"No deletion is pending", nil)
	}

	if err := m.backend.DeleteResume(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	m.pendingDelete = ""
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("Resume deleted", "artifact_id", id)
	}
	return nil
}

// CancelDelete discards the staged deletion without any network call
func (m *Manager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = ""
}

// Profile fetches the stored profile for the configured user
func (m *Manager) Profile(ctx context.Context) (*types.Profile, error) {
	identity, err := m.requireIdentity()
	if err != nil {
		return nil, err
	}
	return m.backend.GetProfile(ctx, identity.UID)
}

// UpdateProfile replaces the user-editable profile fields
func (m *Manager) UpdateProfile(ctx context.Context, prof types.Profile) (*types.Profile, error) {
	identity, err := m.requireIdentity()
	if err != nil {
		return nil, err
	}
	prof.UID = identity.UID
	if prof.Email == "" {
		prof.Email = identity.Email
	}
	return m.backend.UpdateProfile(ctx, prof)
}

// SyncUser pushes the configured identity to the backend so the user record
// exists before saves and profile reads
func (m *Manager) SyncUser(ctx context.Context) error {
	identity, err := m.requireIdentity()
	if err != nil {
		return err
	}
	return m.backend.SaveUser(ctx, *identity)
}

// DownloadArtifact fetches the binary PDF for a saved artifact through the
// backend's download route
func (m *Manager) DownloadArtifact(ctx context.Context, artifact *types.SavedArtifact) ([]byte, error) {
	if artifact.PDFBase64 == "" {
		return nil, errors.NewValidationError(errors.ErrCodeNoPDF,
			"Saved resume carries no PDF", nil)
	}
	pdf, err := base64.StdEncoding.DecodeString(artifact.PDFBase64)
	if err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Saved resume PDF is not valid base64", err)
	}
	return m.backend.DownloadPDF(ctx, pdf)
}
