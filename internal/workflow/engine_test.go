package workflow

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"latexify/internal/backend"
	"latexify/internal/errors"
	"latexify/internal/types"
)

// stubBackend lets each test script the backend responses and observe calls
type stubBackend struct {
	mu    sync.Mutex
	calls []string

	generateLatex string
	generateErr   error
	updateLatex   string
	updateErr     error
	updateSeen    string
	compilePDF    []byte
	compileErr    error
	enhanced      string
	enhanceErr    error
	extracted     string
	extractErr    error

	// blockCompile, when set, holds the compile call until released so tests
	// can exercise concurrent requests
	blockCompile chan struct{}
}

func (s *stubBackend) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *stubBackend) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (s *stubBackend) GenerateLaTeX(ctx context.Context, req backend.GenerateRequest) (string, error) {
	s.record("generate")
	return s.generateLatex, s.generateErr
}

func (s *stubBackend) UpdateLaTeX(ctx context.Context, latexCode, instruction string) (string, error) {
	s.record("update")
	s.mu.Lock()
	s.updateSeen = latexCode
	s.mu.Unlock()
	return s.updateLatex, s.updateErr
}

func (s *stubBackend) CompileLaTeX(ctx context.Context, latexCode string, opts types.CompilerOptions) ([]byte, error) {
	s.record("compile")
	if s.blockCompile != nil {
		<-s.blockCompile
	}
	return s.compilePDF, s.compileErr
}

func (s *stubBackend) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	s.record("enhance")
	return s.enhanced, s.enhanceErr
}

func (s *stubBackend) ExtractResumeText(ctx context.Context, filename string, content io.Reader) (string, error) {
	s.record("extract")
	return s.extracted, s.extractErr
}

func newTestEngine(session *types.Session, be Backend) *Engine {
	return NewEngine(session, be, types.CompilerOptions{Compiler: types.CompilerPDFLaTeX}, nil, nil)
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := errors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestGenerateHappyPath(t *testing.T) {
	stub := &stubBackend{
		generateLatex: "\\documentclass{article}",
		compilePDF:    []byte("%PDF-1.4"),
	}
	session := &types.Session{ID: "s1", State: types.StateIdle}
	engine := newTestEngine(session, stub)

	if err := engine.Generate(context.Background(), "senior gopher"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if session.State != types.StateReady {
		t.Errorf("state = %s, want %s", session.State, types.StateReady)
	}
	if session.GeneratedLatex != session.WorkingLatex {
		t.Error("working document should equal generated baseline after generation")
	}
	if !session.HasPDF() {
		t.Error("expected a compiled PDF")
	}
	if session.Stale {
		t.Error("fresh compile must not be stale")
	}
	if session.LastError != nil {
		t.Errorf("unexpected LastError: %+v", session.LastError)
	}
}

func TestGenerateEmptyPromptRejectedLocally(t *testing.T) {
	stub := &stubBackend{}
	engine := newTestEngine(&types.Session{}, stub)

	err := engine.Generate(context.Background(), "   \n\t ")
	if code := errCode(t, err); code != errors.ErrCodeEmptyPrompt {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeEmptyPrompt)
	}
	if len(stub.calls) != 0 {
		t.Errorf("expected no backend calls, got %v", stub.calls)
	}
}

func TestGenerateFailureWithoutPriorPDF(t *testing.T) {
	stub := &stubBackend{
		generateErr: errors.NewBackendError(errors.ErrCodeBackendRequest, "boom", nil),
	}
	session := &types.Session{State: types.StateIdle}
	engine := newTestEngine(session, stub)

	if err := engine.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected generation error")
	}

	if session.State != types.StateFailed {
		t.Errorf("state = %s, want %s", session.State, types.StateFailed)
	}
	if session.LastError == nil || session.LastError.Code != errors.ErrCodeBackendRequest {
		t.Errorf("LastError = %+v, want code %s", session.LastError, errors.ErrCodeBackendRequest)
	}
}

func TestCompileFailureKeepsReadyWithPriorPDF(t *testing.T) {
	stub := &stubBackend{
		updateLatex: "updated latex",
		compileErr:  errors.NewBackendError(errors.ErrCodeBackendRequest, "compile broke", nil),
	}
	session := &types.Session{
		State:          types.StateReady,
		GeneratedLatex: "base",
		WorkingLatex:   "base",
		CompiledPDF:    []byte("old pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.EditInstruction(context.Background(), "tighten it"); err == nil {
		t.Fatal("expected compile error")
	}

	if session.State != types.StateReady {
		t.Errorf("state = %s, want %s (prior PDF exists)", session.State, types.StateReady)
	}
	if string(session.CompiledPDF) != "old pdf" {
		t.Error("prior PDF must survive a failed compile")
	}
	if session.LastError == nil {
		t.Error("expected LastError to be recorded")
	}
	if !session.Stale {
		t.Error("surviving PDF was built from the pre-edit source and must be stale")
	}
}

func TestGenerateCompileFailureMarksPriorPDFStale(t *testing.T) {
	stub := &stubBackend{
		generateLatex: "regenerated latex",
		compileErr:    errors.NewBackendError(errors.ErrCodeBackendRequest, "compile broke", nil),
	}
	session := &types.Session{
		State:          types.StateReady,
		GeneratedLatex: "base",
		WorkingLatex:   "base",
		CompiledPDF:    []byte("old pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.Generate(context.Background(), "new prompt"); err == nil {
		t.Fatal("expected compile error")
	}

	if session.State != types.StateReady {
		t.Errorf("state = %s, want %s (prior PDF exists)", session.State, types.StateReady)
	}
	if string(session.CompiledPDF) != "old pdf" {
		t.Error("prior PDF must survive a failed compile")
	}
	if !session.Stale {
		t.Error("surviving PDF no longer matches the regenerated source and must be stale")
	}
}

func TestEditInstructionFailureLeavesWorkingUntouched(t *testing.T) {
	stub := &stubBackend{
		updateErr: errors.NewBackendError(errors.ErrCodeBackendRequest, "update broke", nil),
	}
	session := &types.Session{
		State:          types.StateReady,
		GeneratedLatex: "base",
		WorkingLatex:   "working v2",
		CompiledPDF:    []byte("pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.EditInstruction(context.Background(), "do a thing"); err == nil {
		t.Fatal("expected update error")
	}

	if session.WorkingLatex != "working v2" {
		t.Errorf("WorkingLatex = %q, must be byte-identical after failed update", session.WorkingLatex)
	}
	if session.GeneratedLatex != "base" {
		t.Error("baseline must never change on edit")
	}
}

func TestEditInstructionValidation(t *testing.T) {
	tests := []struct {
		name        string
		working     string
		instruction string
		wantCode    string
	}{
		{"empty instruction", "latex", "  ", errors.ErrCodeEmptyInstruction},
		{"no document", "", "add a skills section", errors.ErrCodeNoGeneratedLatex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubBackend{}
			session := &types.Session{WorkingLatex: tt.working}
			engine := newTestEngine(session, stub)

			err := engine.EditInstruction(context.Background(), tt.instruction)
			if code := errCode(t, err); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
			if len(stub.calls) != 0 {
				t.Errorf("expected no backend calls, got %v", stub.calls)
			}
		})
	}
}

func TestEditInstructionSendsCurrentWorkingDocument(t *testing.T) {
	stub := &stubBackend{
		updateLatex: "rewritten",
		compilePDF:  []byte("pdf2"),
	}
	session := &types.Session{
		State:          types.StateReady,
		GeneratedLatex: "base",
		WorkingLatex:   "base",
		CompiledPDF:    []byte("pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.DirectEdit("hand-tuned latex"); err != nil {
		t.Fatalf("DirectEdit failed: %v", err)
	}
	if err := engine.EditInstruction(context.Background(), "tighten it"); err != nil {
		t.Fatalf("EditInstruction failed: %v", err)
	}

	if stub.updateSeen != "hand-tuned latex" {
		t.Errorf("backend saw %q, want the direct-edited source", stub.updateSeen)
	}
}

func TestBusyFlagRejectsNeverQueues(t *testing.T) {
	release := make(chan struct{})
	stub := &stubBackend{
		generateLatex: "latex",
		compilePDF:    []byte("pdf"),
		blockCompile:  release,
	}
	session := &types.Session{State: types.StateIdle}
	engine := newTestEngine(session, stub)

	done := make(chan error, 1)
	go func() {
		done <- engine.Generate(context.Background(), "prompt")
	}()

	// Wait for the first operation to reach the blocked compile step.
	for stub.callCount("compile") == 0 {
		time.Sleep(time.Millisecond)
	}

	err := engine.Generate(context.Background(), "second prompt")
	if code := errCode(t, err); code != errors.ErrCodeOperationInFlight {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeOperationInFlight)
	}
	if !strings.Contains(err.Error(), "generate") {
		t.Errorf("rejection should name the operation in flight, got %q", err.Error())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	// The rejected call must not have queued a second generation.
	if n := stub.callCount("generate"); n != 1 {
		t.Errorf("generate called %d times, want 1", n)
	}
}

func TestDirectEditMarksStale(t *testing.T) {
	stub := &stubBackend{compilePDF: []byte("pdf2")}
	session := &types.Session{
		State:          types.StateReady,
		GeneratedLatex: "base",
		WorkingLatex:   "base",
		CompiledPDF:    []byte("pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.DirectEdit("hand-tuned latex"); err != nil {
		t.Fatalf("DirectEdit failed: %v", err)
	}
	if !session.Stale {
		t.Error("PDF should be stale after a direct edit")
	}
	if len(stub.calls) != 0 {
		t.Errorf("direct edit must not call the backend, got %v", stub.calls)
	}

	if err := engine.Recompile(context.Background()); err != nil {
		t.Fatalf("Recompile failed: %v", err)
	}
	if session.Stale {
		t.Error("recompile should clear staleness")
	}
	if string(session.CompiledPDF) != "pdf2" {
		t.Errorf("CompiledPDF = %q, want fresh compile output", session.CompiledPDF)
	}
}

func TestDirectEditIdenticalSourceIsNoOp(t *testing.T) {
	stub := &stubBackend{}
	session := &types.Session{
		GeneratedLatex: "base",
		WorkingLatex:   "base",
		CompiledPDF:    []byte("pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.DirectEdit("base"); err != nil {
		t.Fatalf("DirectEdit failed: %v", err)
	}
	if session.Stale {
		t.Error("identical source must not mark the PDF stale")
	}
}

func TestDirectEditRequiresGeneration(t *testing.T) {
	engine := newTestEngine(&types.Session{}, &stubBackend{})

	err := engine.DirectEdit("latex")
	if code := errCode(t, err); code != errors.ErrCodeNoGeneratedLatex {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeNoGeneratedLatex)
	}
}

func TestEnhanceReplacesPromptWholesale(t *testing.T) {
	stub := &stubBackend{enhanced: "polished prompt"}
	session := &types.Session{RawPrompt: "rough prompt"}
	engine := newTestEngine(session, stub)

	if err := engine.Enhance(context.Background()); err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if session.RawPrompt != "polished prompt" {
		t.Errorf("RawPrompt = %q, want the enhanced text", session.RawPrompt)
	}
}

func TestEnhanceFailureKeepsDocumentState(t *testing.T) {
	stub := &stubBackend{
		enhanceErr: errors.NewBackendError(errors.ErrCodeEnhanceFailed, "nope", nil),
	}
	session := &types.Session{
		State:        types.StateReady,
		RawPrompt:    "prompt",
		WorkingLatex: "latex",
		CompiledPDF:  []byte("pdf"),
	}
	engine := newTestEngine(session, stub)

	if err := engine.Enhance(context.Background()); err == nil {
		t.Fatal("expected enhance error")
	}
	if session.State != types.StateReady {
		t.Errorf("state = %s, enhance failure must not move the state machine", session.State)
	}
	if session.RawPrompt != "prompt" {
		t.Error("prompt must survive a failed enhancement")
	}
	if session.LastError == nil {
		t.Error("expected LastError to be recorded")
	}
}

func TestExtractFromUploadRejectsNonPDFLocally(t *testing.T) {
	stub := &stubBackend{}
	engine := newTestEngine(&types.Session{}, stub)

	err := engine.ExtractFromUpload(context.Background(), "resume.docx", strings.NewReader("x"))
	if code := errCode(t, err); code != errors.ErrCodeInvalidFileType {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeInvalidFileType)
	}
	if len(stub.calls) != 0 {
		t.Errorf("rejection must happen before any network call, got %v", stub.calls)
	}
}

func TestExtractFromUploadSeedsPrompt(t *testing.T) {
	stub := &stubBackend{extracted: "ten years of Go"}
	session := &types.Session{RawPrompt: "old prompt", ExtractedText: "old text"}
	engine := newTestEngine(session, stub)

	if err := engine.ExtractFromUpload(context.Background(), "resume.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("ExtractFromUpload failed: %v", err)
	}
	if session.ExtractedText != "ten years of Go" {
		t.Errorf("ExtractedText = %q", session.ExtractedText)
	}
	if session.RawPrompt != "ten years of Go" {
		t.Errorf("RawPrompt = %q, extraction should seed the prompt", session.RawPrompt)
	}
}

func TestRecompileRequiresDocument(t *testing.T) {
	engine := newTestEngine(&types.Session{}, &stubBackend{})

	err := engine.Recompile(context.Background())
	if code := errCode(t, err); code != errors.ErrCodeNoGeneratedLatex {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeNoGeneratedLatex)
	}
}
