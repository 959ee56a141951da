package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"latexify/internal/errors"
	"latexify/internal/types"
)

func TestLoadMissingFileYieldsFreshSession(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"), nil)

	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if session.ID == "" {
		t.Error("fresh session must have an ID")
	}
	if session.State != types.StateIdle {
		t.Errorf("state = %s, want %s", session.State, types.StateIdle)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, nil)

	_, err := store.Load()
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeInvalidFormat {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewStore(path, nil)

	saved := &types.Session{
		ID:                 "abc",
		RawPrompt:          "prompt",
		TemplateID:         "modern",
		GeneratedLatex:     "base",
		WorkingLatex:       "working",
		CompiledPDF:        []byte("%PDF-1.4"),
		State:              types.StateReady,
		PendingInstruction: "staged edit",
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != saved.ID || loaded.RawPrompt != saved.RawPrompt ||
		loaded.TemplateID != saved.TemplateID ||
		loaded.WorkingLatex != saved.WorkingLatex ||
		loaded.State != saved.State ||
		loaded.PendingInstruction != saved.PendingInstruction {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
	if string(loaded.CompiledPDF) != string(saved.CompiledPDF) {
		t.Error("PDF bytes did not survive the roundtrip")
	}
}

func TestLoadNormalizesInterruptedOperations(t *testing.T) {
	tests := []struct {
		name      string
		state     types.SessionState
		pdf       []byte
		wantState types.SessionState
	}{
		{"compiling with pdf", types.StateCompiling, []byte("pdf"), types.StateReady},
		{"compiling without pdf", types.StateCompiling, nil, types.StateFailed},
		{"generating without pdf", types.StateGenerating, nil, types.StateFailed},
		{"updating with pdf", types.StateUpdating, []byte("pdf"), types.StateReady},
		{"ready stays ready", types.StateReady, []byte("pdf"), types.StateReady},
		{"idle stays idle", types.StateIdle, nil, types.StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			store := NewStore(path, nil)
			if err := store.Save(&types.Session{ID: "x", State: tt.state, CompiledPDF: tt.pdf}); err != nil {
				t.Fatal(err)
			}

			loaded, err := store.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.State != tt.wantState {
				t.Errorf("state = %s, want %s", loaded.State, tt.wantState)
			}
		})
	}
}

func TestResetRemovesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path, nil)
	if err := store.Save(NewSession()); err != nil {
		t.Fatal(err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file should be gone after Reset")
	}
	// Resetting again is not an error.
	if err := store.Reset(); err != nil {
		t.Errorf("second Reset failed: %v", err)
	}
}
