package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"latexify/internal/errors"
	"latexify/internal/types"
)

// ATSBackend is the slice of the backend client the analyzer drives
type ATSBackend interface {
	AnalyzeATS(ctx context.Context, pdf []byte, jobTitle, company string) (*types.AnalysisResult, error)
}

// Analyzer runs ATS compatibility analysis over the compiled PDF. It has its
// own concurrency domain: one analysis in flight at a time, independent of
// the engine busy flag. Closing the results panel bumps a generation counter
// so a late response is silently discarded.
type Analyzer struct {
	mu         sync.Mutex
	inFlight   bool
	generation uint64
	result     *types.AnalysisResult
	pending    string // staged edit instruction awaiting the edit path

	backend  ATSBackend
	observer Observer
	onFocus  func()
	logger   *errors.Logger
}

// AnalyzerOption customizes an Analyzer at construction time
type AnalyzerOption func(*Analyzer)

// WithAnalyzerObserver registers a per-analysis metrics callback
func WithAnalyzerObserver(fn Observer) AnalyzerOption {
	return func(a *Analyzer) { a.observer = fn }
}

// WithFocusCallback registers the editor-focus signal fired by apply-all
func WithFocusCallback(fn func()) AnalyzerOption {
	return func(a *Analyzer) { a.onFocus = fn }
}

// NewAnalyzer creates an analyzer over the given backend
func NewAnalyzer(be ATSBackend, logger *errors.Logger, options ...AnalyzerOption) *Analyzer {
	a := &Analyzer{backend: be, logger: logger}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Analyze submits the session's compiled PDF for scoring. Sessions without a
// PDF are rejected locally; a concurrent analysis is rejected, never queued.
// A nil result with nil error means the panel was closed before the response
// arrived.
func (a *Analyzer) Analyze(ctx context.Context, session *types.Session, jobTitle, company string) (*types.AnalysisResult, error) {
	if !session.HasPDF() {
		return nil, errors.NewValidationError(errors.ErrCodeNoPDF,
			"Compile a resume before running ATS analysis", nil)
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil, errors.NewValidationError(errors.ErrCodeAnalysisInFlight,
			"An analysis is already in progress", nil)
	}
	a.inFlight = true
	generation := a.generation
	pdf := session.CompiledPDF
	a.mu.Unlock()

	start := time.Now()
	result, err := a.backend.AnalyzeATS(ctx, pdf, jobTitle, company)
	if a.observer != nil {
		a.observer("analyze", time.Since(start), err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false

	if generation != a.generation {
		// Panel closed while the request was outstanding.
		if a.logger != nil {
			a.logger.Debug("Discarding stale analysis response")
		}
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	a.result = result
	return result, nil
}

// ClosePanel discards the current result and invalidates any outstanding
// response. Staged instructions survive.
func (a *Analyzer) ClosePanel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.result = nil
}

// Result returns the most recent analysis, if one is showing
func (a *Analyzer) Result() *types.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// ApplySuggestion stages a single improvement as a pending edit instruction,
// rewritten into the same "Consider ..." form the combined instruction uses.
// No backend call happens until the edit path consumes it.
func (a *Analyzer) ApplySuggestion(text string) {
	a.mu.Lock()
	a.pending = normalizeImprovement(text)
	a.mu.Unlock()

	if a.onFocus != nil {
		a.onFocus()
	}
}

// ApplyAllSuggestions composes one instruction covering every improvement
// and every missing keyword from the result, stages it, and signals the
// editor-focus callback. Repeated calls with the same result stage the same
// instruction rather than accumulating.
func (a *Analyzer) ApplyAllSuggestions(result *types.AnalysisResult) string {
	instruction := ComposeImprovementInstruction(result)

	a.mu.Lock()
	a.pending = instruction
	a.mu.Unlock()

	if a.onFocus != nil {
		a.onFocus()
	}
	return instruction
}

// TakePending returns the staged instruction and clears it
func (a *Analyzer) TakePending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := a.pending
	a.pending = ""
	return pending
}

// Pending returns the staged instruction without consuming it
func (a *Analyzer) Pending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// ComposeImprovementInstruction builds the combined edit instruction from an
// analysis result: each improvement as a numbered item, then one item adding
// the missing keywords
func ComposeImprovementInstruction(result *types.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("Improve my resume for ATS compatibility by: \n")

	item := 1
	for _, improvement := range result.Improvements {
		fmt.Fprintf(&b, "%d. %s\n", item, normalizeImprovement(improvement))
		item++
	}
	if len(result.MissingKeywords) > 0 {
		fmt.Fprintf(&b, "%d. Adding these keywords: %s\n", item,
			strings.Join(result.MissingKeywords, ", "))
	}

	b.WriteString("\nMake it professional and focused on highlighting my qualifications.")
	return b.String()
}

// leading verbs that already read as instructions
var instructionVerbs = []string{"Consider", "Add", "Include", "Highlight", "Enhance"}

// normalizeImprovement prefixes an improvement with "Consider" unless it
// already starts with an instruction verb
func normalizeImprovement(improvement string) string {
	for _, verb := range instructionVerbs {
		if strings.HasPrefix(improvement, verb) {
			return improvement
		}
	}
	runes := []rune(improvement)
	if len(runes) == 0 {
		return improvement
	}
	runes[0] = unicode.ToLower(runes[0])
	return "Consider " + string(runes)
}
