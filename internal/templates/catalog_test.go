package templates

import (
	"context"
	"testing"
	"time"

	"latexify/internal/errors"
	"latexify/internal/types"
)

type stubBackend struct {
	calls     int
	templates []types.Template
	err       error
}

func (s *stubBackend) GetTemplates(ctx context.Context) ([]types.Template, error) {
	s.calls++
	return s.templates, s.err
}

func TestListCachesCatalog(t *testing.T) {
	stub := &stubBackend{templates: []types.Template{
		{ID: "modern", Name: "Modern", Category: "professional"},
	}}
	catalog := NewCatalog(stub, time.Minute, nil)

	for i := 0; i < 3; i++ {
		if _, err := catalog.List(context.Background()); err != nil {
			t.Fatalf("List failed: %v", err)
		}
	}
	if stub.calls != 1 {
		t.Errorf("backend fetched %d times, want 1 (cache hit on repeats)", stub.calls)
	}

	catalog.Invalidate()
	if _, err := catalog.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stub.calls != 2 {
		t.Errorf("backend fetched %d times after Invalidate, want 2", stub.calls)
	}
}

func TestListSortsByCategoryThenName(t *testing.T) {
	stub := &stubBackend{templates: []types.Template{
		{ID: "c", Name: "Zeta", Category: "traditional"},
		{ID: "a", Name: "Beta", Category: "professional"},
		{ID: "b", Name: "Alpha", Category: "professional"},
	}}
	catalog := NewCatalog(stub, time.Minute, nil)

	list, err := catalog.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"b", "a", "c"}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestListErrorNotCached(t *testing.T) {
	stub := &stubBackend{err: errors.NewNetworkError(errors.ErrCodeNetworkFailure, "down", nil)}
	catalog := NewCatalog(stub, time.Minute, nil)

	if _, err := catalog.List(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}

	stub.err = nil
	stub.templates = []types.Template{{ID: "modern"}}
	list, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("retry after failure should fetch again: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d templates, want 1", len(list))
	}
}

func TestFindUnknownTemplate(t *testing.T) {
	stub := &stubBackend{templates: []types.Template{{ID: "modern"}}}
	catalog := NewCatalog(stub, time.Minute, nil)

	if _, err := catalog.Find(context.Background(), "modern"); err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	_, err := catalog.Find(context.Background(), "nope")
	appErr := errors.AsAppError(err)
	if appErr == nil || appErr.Code != errors.ErrCodeInvalidFormat {
		t.Fatalf("err = %v, want code %s", err, errors.ErrCodeInvalidFormat)
	}
}
