package profile

import (
	"context"
	"encoding/base64"
	"testing"

	"latexify/internal/backend"
	"latexify/internal/errors"
	"latexify/internal/types"
)

type stubBackend struct {
	calls []string

	savedReq  backend.SaveResumeRequest
	artifact  *types.SavedArtifact
	artifacts []types.SavedArtifact
	profile   *types.Profile
	pdf       []byte
	err       error
}

func (s *stubBackend) SaveResume(ctx context.Context, req backend.SaveResumeRequest) (*types.SavedArtifact, error) {
	s.calls = append(s.calls, "save")
	s.savedReq = req
	return s.artifact, s.err
}

func (s *stubBackend) ListResumes(ctx context.Context, uid string) ([]types.SavedArtifact, error) {
	s.calls = append(s.calls, "list")
	return s.artifacts, s.err
}

func (s *stubBackend) DeleteResume(ctx context.Context, id string) error {
	s.calls = append(s.calls, "delete")
	return s.err
}

func (s *stubBackend) GetProfile(ctx context.Context, uid string) (*types.Profile, error) {
	s.calls = append(s.calls, "get_profile")
	return s.profile, s.err
}

func (s *stubBackend) UpdateProfile(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	s.calls = append(s.calls, "update_profile")
	s.profile = &profile
	return &profile, s.err
}

func (s *stubBackend) SaveUser(ctx context.Context, identity types.UserIdentity) error {
	s.calls = append(s.calls, "save_user")
	return s.err
}

func (s *stubBackend) DownloadPDF(ctx context.Context, pdf []byte) ([]byte, error) {
	s.calls = append(s.calls, "download")
	return s.pdf, s.err
}

func testIdentity() *types.UserIdentity {
	return &types.UserIdentity{
		UID:         "uid-1",
		Email:       "user@example.com",
		DisplayName: "Test User",
	}
}

func wantAuthError(t *testing.T, err error) {
	t.Helper()
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeNotAuthenticated {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeNotAuthenticated)
	}
}

func TestOperationsRequireIdentityBeforeNetwork(t *testing.T) {
	stub := &stubBackend{}
	manager := NewManager(stub, nil, nil)
	ctx := context.Background()
	session := &types.Session{CompiledPDF: []byte("pdf")}

	_, err := manager.Save(ctx, session, "t", "")
	wantAuthError(t, err)
	_, err = manager.List(ctx)
	wantAuthError(t, err)
	wantAuthError(t, manager.RequestDelete("id"))
	_, err = manager.Profile(ctx)
	wantAuthError(t, err)
	_, err = manager.UpdateProfile(ctx, types.Profile{})
	wantAuthError(t, err)
	wantAuthError(t, manager.SyncUser(ctx))

	if len(stub.calls) != 0 {
		t.Errorf("unauthenticated operations must not reach the backend, got %v", stub.calls)
	}
}

func TestSaveRequiresPDFBeforeNetwork(t *testing.T) {
	stub := &stubBackend{}
	manager := NewManager(stub, testIdentity(), nil)

	_, err := manager.Save(context.Background(), &types.Session{}, "title", "")
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeNoPDF {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeNoPDF)
	}
	if len(stub.calls) != 0 {
		t.Errorf("expected no backend calls, got %v", stub.calls)
	}
}

func TestSaveBuildsRequestWithoutMutatingSession(t *testing.T) {
	stub := &stubBackend{artifact: &types.SavedArtifact{ID: "a1", Title: "My Resume"}}
	manager := NewManager(stub, testIdentity(), nil)

	session := &types.Session{
		TemplateID:   "modern",
		WorkingLatex: "latex source",
		CompiledPDF:  []byte("%PDF-1.4"),
		State:        types.StateReady,
	}
	before := *session

	artifact, err := manager.Save(context.Background(), session, "My Resume", "first draft")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if artifact.ID != "a1" {
		t.Errorf("artifact.ID = %s", artifact.ID)
	}

	req := stub.savedReq
	if req.UserID != "uid-1" || req.Email != "user@example.com" {
		t.Errorf("identity not copied into request: %+v", req)
	}
	if req.Title != "My Resume" || req.Description != "first draft" || req.TemplateID != "modern" {
		t.Errorf("metadata not copied: %+v", req)
	}
	if req.LatexCode != "latex source" {
		t.Errorf("LatexCode = %q", req.LatexCode)
	}
	decoded, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	if err != nil || string(decoded) != "%PDF-1.4" {
		t.Errorf("PDFBase64 does not round-trip: %v", err)
	}

	if session.State != before.State || session.WorkingLatex != before.WorkingLatex {
		t.Error("Save must never mutate the session")
	}
}

func TestTwoStepDelete(t *testing.T) {
	stub := &stubBackend{}
	manager := NewManager(stub, testIdentity(), nil)
	ctx := context.Background()

	// Confirming with nothing staged is an error.
	err := manager.ConfirmDelete(ctx)
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeDeleteFailed {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeDeleteFailed)
	}

	if err := manager.RequestDelete("a1"); err != nil {
		t.Fatal(err)
	}
	if manager.PendingDelete() != "a1" {
		t.Error("deletion not staged")
	}
	if len(stub.calls) != 0 {
		t.Errorf("staging must not call the backend, got %v", stub.calls)
	}

	// Cancelling discards the staged deletion without any network call.
	manager.CancelDelete()
	if manager.PendingDelete() != "" {
		t.Error("CancelDelete left the staged id")
	}
	if len(stub.calls) != 0 {
		t.Errorf("cancel must not call the backend, got %v", stub.calls)
	}

	// Stage again and confirm.
	if err := manager.RequestDelete("a1"); err != nil {
		t.Fatal(err)
	}
	if err := manager.ConfirmDelete(ctx); err != nil {
		t.Fatalf("ConfirmDelete failed: %v", err)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "delete" {
		t.Errorf("calls = %v, want one delete", stub.calls)
	}
	if manager.PendingDelete() != "" {
		t.Error("confirmed deletion should clear the staged id")
	}
}

func TestUpdateProfileForcesIdentityFields(t *testing.T) {
	stub := &stubBackend{}
	manager := NewManager(stub, testIdentity(), nil)

	updated, err := manager.UpdateProfile(context.Background(), types.Profile{
		UID:      "spoofed-uid",
		FullName: "New Name",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.UID != "uid-1" {
		t.Errorf("UID = %s, must be forced to the configured identity", updated.UID)
	}
	if updated.Email != "user@example.com" {
		t.Errorf("Email = %s, should be filled from the identity", updated.Email)
	}
	if updated.FullName != "New Name" {
		t.Errorf("FullName = %s", updated.FullName)
	}
}

func TestDownloadArtifact(t *testing.T) {
	stub := &stubBackend{pdf: []byte("download result")}
	manager := NewManager(stub, testIdentity(), nil)
	ctx := context.Background()

	// No PDF on the artifact is a local error.
	_, err := manager.DownloadArtifact(ctx, &types.SavedArtifact{ID: "a1"})
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeNoPDF {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeNoPDF)
	}
	if len(stub.calls) != 0 {
		t.Errorf("expected no backend calls, got %v", stub.calls)
	}

	got, err := manager.DownloadArtifact(ctx, &types.SavedArtifact{
		ID:        "a1",
		PDFBase64: base64.StdEncoding.EncodeToString([]byte("%PDF")),
	})
	if err != nil {
		t.Fatalf("DownloadArtifact failed: %v", err)
	}
	if string(got) != "download result" {
		t.Errorf("pdf = %q", got)
	}
}
