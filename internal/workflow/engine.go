package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"latexify/internal/backend"
	"latexify/internal/errors"
	"latexify/internal/types"
	"latexify/internal/utils"
)

// Backend is the slice of the backend client the engine drives
type Backend interface {
	GenerateLaTeX(ctx context.Context, req backend.GenerateRequest) (string, error)
	UpdateLaTeX(ctx context.Context, latexCode, instruction string) (string, error)
	CompileLaTeX(ctx context.Context, latexCode string, opts types.CompilerOptions) ([]byte, error)
	EnhancePrompt(ctx context.Context, prompt string) (string, error)
	ExtractResumeText(ctx context.Context, filename string, content io.Reader) (string, error)
}

// Observer receives one callback per completed engine operation
type Observer func(operation string, duration time.Duration, err error)

// Engine is the generation workflow state machine. It is the sole writer of
// the Session; one mutating operation runs at a time and a second call while
// busy is rejected immediately, never queued.
type Engine struct {
	mu   sync.Mutex
	busy string // operation holding the flag, empty when free

	session  *types.Session
	backend  Backend
	options  types.CompilerOptions
	notifier *Notifier
	observer Observer
	logger   *errors.Logger
}

// EngineOption customizes an Engine at construction time
type EngineOption func(*Engine)

// WithObserver registers a per-operation metrics callback
func WithObserver(fn Observer) EngineOption {
	return func(e *Engine) { e.observer = fn }
}

// NewEngine creates a workflow engine around an existing session
func NewEngine(session *types.Session, be Backend, opts types.CompilerOptions, notifier *Notifier, logger *errors.Logger, options ...EngineOption) *Engine {
	e := &Engine{
		session:  session,
		backend:  be,
		options:  opts,
		notifier: notifier,
		logger:   logger,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Session returns the session the engine operates on. Callers must treat it
// as read-only; the engine is the sole writer.
func (e *Engine) Session() *types.Session {
	return e.session
}

// Generate produces a fresh LaTeX document from the prompt and compiles it.
// A new generation replaces both the generated and working documents.
func (e *Engine) Generate(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyPrompt,
			"Please enter a prompt before generating", nil)
	}

	if err := e.tryAcquire("generate"); err != nil {
		return err
	}
	defer e.release()

	start := time.Now()
	err := e.generate(ctx, prompt)
	e.observe("generate", start, err)
	return err
}

func (e *Engine) generate(ctx context.Context, prompt string) error {
	e.mu.Lock()
	e.session.RawPrompt = prompt
	e.session.State = types.StateGenerating
	extractedText := e.session.ExtractedText
	templateID := e.session.TemplateID
	e.mu.Unlock()

	latex, err := e.backend.GenerateLaTeX(ctx, backend.GenerateRequest{
		Prompt:        prompt,
		ExtractedText: extractedText,
		TemplateID:    templateID,
		Options:       e.options,
	})
	if err != nil {
		e.fail(err)
		return err
	}

	e.mu.Lock()
	e.session.GeneratedLatex = latex
	e.session.WorkingLatex = latex
	// Any PDF from a previous run no longer matches the working document.
	// A successful compile clears the flag.
	e.session.Stale = e.session.HasPDF()
	e.mu.Unlock()

	return e.compile(ctx)
}

// EditInstruction sends the working document and a natural-language
// instruction to the backend and compiles the rewritten document. A failed
// update leaves the working document untouched and discards the instruction.
func (e *Engine) EditInstruction(ctx context.Context, instruction string) error {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyInstruction,
			"Please enter an edit instruction", nil)
	}

	if err := e.tryAcquire("edit"); err != nil {
		return err
	}
	defer e.release()

	// Read the working document only after the busy flag is held so a
	// concurrent DirectEdit cannot slip in between read and acquire.
	e.mu.Lock()
	working := e.session.WorkingLatex
	e.mu.Unlock()
	if working == "" {
		return errors.NewValidationError(errors.ErrCodeNoGeneratedLatex,
			"Generate a resume before editing", nil)
	}

	start := time.Now()
	err := e.editInstruction(ctx, working, instruction)
	e.observe("edit", start, err)
	return err
}

func (e *Engine) editInstruction(ctx context.Context, working, instruction string) error {
	e.setState(types.StateUpdating)

	updated, err := e.backend.UpdateLaTeX(ctx, working, instruction)
	if err != nil {
		e.fail(err)
		return err
	}

	e.mu.Lock()
	e.session.WorkingLatex = updated
	// The prior PDF, if any, was built from the pre-edit source.
	e.session.Stale = e.session.HasPDF()
	e.mu.Unlock()

	return e.compile(ctx)
}

// DirectEdit replaces the working document with manually edited source. It
// is synchronous and makes no backend call; an existing compiled PDF becomes
// stale until the next Recompile.
func (e *Engine) DirectEdit(latex string) error {
	if err := e.tryAcquire("edit"); err != nil {
		return err
	}
	defer e.release()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.GeneratedLatex == "" {
		return errors.NewValidationError(errors.ErrCodeNoGeneratedLatex,
			"Generate a resume before editing", nil)
	}
	if latex == e.session.WorkingLatex {
		return nil
	}

	e.session.WorkingLatex = latex
	if e.session.HasPDF() {
		e.session.Stale = true
	}
	return nil
}

// Recompile compiles the current working document. With unchanged source and
// a deterministic backend the result is identical.
func (e *Engine) Recompile(ctx context.Context) error {
	e.mu.Lock()
	working := e.session.WorkingLatex
	e.mu.Unlock()
	if working == "" {
		return errors.NewValidationError(errors.ErrCodeNoGeneratedLatex,
			"Generate a resume before compiling", nil)
	}

	if err := e.tryAcquire("recompile"); err != nil {
		return err
	}
	defer e.release()

	start := time.Now()
	err := e.compile(ctx)
	e.observe("recompile", start, err)
	return err
}

// Enhance rewrites the raw prompt via the backend, replacing it wholesale
func (e *Engine) Enhance(ctx context.Context) error {
	e.mu.Lock()
	prompt := strings.TrimSpace(e.session.RawPrompt)
	e.mu.Unlock()
	if prompt == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyPrompt,
			"Please enter a prompt before enhancing", nil)
	}

	if err := e.tryAcquire("enhance"); err != nil {
		return err
	}
	defer e.release()

	start := time.Now()
	enhanced, err := e.backend.EnhancePrompt(ctx, prompt)
	e.observe("enhance", start, err)
	if err != nil {
		e.recordError(err)
		return err
	}

	e.mu.Lock()
	e.session.RawPrompt = enhanced
	e.session.LastError = nil
	e.mu.Unlock()

	e.notify("Prompt enhanced")
	return nil
}

// ExtractFromUpload uploads a PDF resume and replaces both the extracted
// text and the raw prompt with the backend's extraction. Non-PDF files are
// rejected locally without any network call.
func (e *Engine) ExtractFromUpload(ctx context.Context, filename string, content io.Reader) error {
	if !utils.IsPDFFile(filename) {
		return errors.NewValidationError(errors.ErrCodeInvalidFileType,
			"Only PDF files can be uploaded", nil)
	}

	if err := e.tryAcquire("upload"); err != nil {
		return err
	}
	defer e.release()

	start := time.Now()
	text, err := e.backend.ExtractResumeText(ctx, filename, content)
	e.observe("upload", start, err)
	if err != nil {
		e.recordError(err)
		return err
	}

	e.mu.Lock()
	e.session.ExtractedText = text
	e.session.RawPrompt = text
	e.session.LastError = nil
	e.mu.Unlock()

	e.notify("Resume content extracted successfully")
	return nil
}

// SelectTemplate records the template used by the next generation
func (e *Engine) SelectTemplate(templateID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.TemplateID = templateID
}

// ClearError dismisses the recorded error without changing document state
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.session.LastError = nil
	e.mu.Unlock()
	if e.notifier != nil {
		e.notifier.Clear()
	}
}

// compile runs the shared compilation step. On failure the session returns
// to Ready when a previously compiled PDF exists, otherwise Failed.
func (e *Engine) compile(ctx context.Context) error {
	e.mu.Lock()
	e.session.State = types.StateCompiling
	working := e.session.WorkingLatex
	e.mu.Unlock()

	pdf, err := e.backend.CompileLaTeX(ctx, working, e.options)
	if err != nil {
		e.fail(err)
		return err
	}

	e.mu.Lock()
	e.session.CompiledPDF = pdf
	e.session.Stale = false
	e.session.State = types.StateReady
	e.session.LastError = nil
	e.mu.Unlock()

	return nil
}

// tryAcquire claims the busy flag or rejects with the operation already
// holding it
func (e *Engine) tryAcquire(operation string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy != "" {
		return errors.NewValidationError(errors.ErrCodeOperationInFlight,
			fmt.Sprintf("A %s operation is already in progress", e.busy), nil)
	}
	e.busy = operation
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.busy = ""
	e.mu.Unlock()
}

func (e *Engine) setState(state types.SessionState) {
	e.mu.Lock()
	e.session.State = state
	e.mu.Unlock()
}

// fail records the error and restores a presentable state
func (e *Engine) fail(err error) {
	info := errorInfo(err)

	e.mu.Lock()
	e.session.LastError = info
	if e.session.HasPDF() {
		e.session.State = types.StateReady
	} else {
		e.session.State = types.StateFailed
	}
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Error(info.Message)
	}
	if e.logger != nil {
		e.logger.LogError(err, "Workflow operation failed")
	}
}

// recordError stores the error without touching the document state machine
func (e *Engine) recordError(err error) {
	info := errorInfo(err)

	e.mu.Lock()
	e.session.LastError = info
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Error(info.Message)
	}
	if e.logger != nil {
		e.logger.LogError(err, "Workflow operation failed")
	}
}

func (e *Engine) notify(message string) {
	if e.notifier != nil {
		e.notifier.Info(message)
	}
}

func (e *Engine) observe(operation string, start time.Time, err error) {
	if e.observer != nil {
		e.observer(operation, time.Since(start), err)
	}
}

func errorInfo(err error) *types.ErrorInfo {
	if appErr := errors.AsAppError(err); appErr != nil {
		return &types.ErrorInfo{Code: appErr.Code, Message: appErr.Message}
	}
	return &types.ErrorInfo{Code: errors.ErrCodeUnexpected, Message: err.Error()}
}
