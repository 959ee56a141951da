package types

import "time"

// Compiler identifies the LaTeX engine used by the backend compile service
type Compiler string

const (
	CompilerPDFLaTeX Compiler = "pdflatex"
	CompilerXeLaTeX  Compiler = "xelatex"
	CompilerLuaLaTeX Compiler = "lualatex"
)

// CompilerOptions are forwarded verbatim to the generate and compile endpoints
type CompilerOptions struct {
	Compiler         Compiler `json:"compiler"`
	StopOnFirstError bool     `json:"stopOnFirstError"`
}

// SessionState is the workflow state machine position for a document session
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateGenerating SessionState = "generating"
	StateCompiling  SessionState = "compiling"
	StateUpdating   SessionState = "updating_latex"
	StateReady      SessionState = "ready"
	StateFailed     SessionState = "failed"
)

// Session is the in-memory editing session for one document.
//
// GeneratedLatex is the write-once baseline of the most recent generation;
// WorkingLatex diverges from it through AI updates and direct edits.
// CompiledPDF always corresponds to the WorkingLatex that was current at the
// last successful compile; Stale records that WorkingLatex has drifted since.
type Session struct {
	ID            string          `json:"id"`
	RawPrompt     string          `json:"rawPrompt"`
	ExtractedText string          `json:"extractedText,omitempty"`
	TemplateID    string          `json:"templateId"`
	Options       CompilerOptions `json:"options"`

	GeneratedLatex string `json:"generatedLatex,omitempty"`
	WorkingLatex   string `json:"workingLatex,omitempty"`
	CompiledPDF    []byte `json:"compiledPdf,omitempty"`
	Stale          bool   `json:"stale,omitempty"`

	State     SessionState `json:"state"`
	LastError *ErrorInfo   `json:"lastError,omitempty"`

	// PendingInstruction is an edit instruction staged by the ATS analysis
	// apply actions, consumed by the next edit
	PendingInstruction string `json:"pendingInstruction,omitempty"`
}

// SessionSummary is the display projection of a Session, with document
// bodies reduced to sizes
type SessionSummary struct {
	ID            string       `json:"id"`
	State         SessionState `json:"state"`
	TemplateID    string       `json:"templateId,omitempty"`
	PromptPreview string       `json:"promptPreview,omitempty"`
	HasLatex      bool         `json:"hasLatex"`
	LatexBytes    int          `json:"latexBytes,omitempty"`
	HasPDF        bool         `json:"hasPdf"`
	PDFBytes      int          `json:"pdfBytes,omitempty"`
	Stale         bool         `json:"stale,omitempty"`
	LastError     *ErrorInfo   `json:"lastError,omitempty"`
}

// Summarize builds the display projection of a session
func (s *Session) Summarize() SessionSummary {
	const previewLen = 80
	preview := s.RawPrompt
	if runes := []rune(preview); len(runes) > previewLen {
		preview = string(runes[:previewLen]) + "..."
	}
	return SessionSummary{
		ID:            s.ID,
		State:         s.State,
		TemplateID:    s.TemplateID,
		PromptPreview: preview,
		HasLatex:      s.WorkingLatex != "",
		LatexBytes:    len(s.WorkingLatex),
		HasPDF:        s.HasPDF(),
		PDFBytes:      len(s.CompiledPDF),
		Stale:         s.Stale,
		LastError:     s.LastError,
	}
}

// ErrorInfo is the serializable form of the session's last failure
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HasPDF reports whether the session holds a compiled document
func (s *Session) HasPDF() bool {
	return len(s.CompiledPDF) > 0
}

// AnalysisResult is one ATS compatibility report. Results are immutable once
// received; a new analysis produces a new result rather than patching an old one.
type AnalysisResult struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	MissingKeywords []string `json:"missing_keywords"`
}

// SavedArtifact is a persisted snapshot of a session (PDF + LaTeX + metadata).
// Its lifecycle is independent of the session that produced it.
type SavedArtifact struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TemplateID  string    `json:"template_id"`
	PDFBase64   string    `json:"pdf_base64,omitempty"`
	LatexCode   string    `json:"latex_code,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Template describes one résumé template offered by the backend catalog
type Template struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	Description   string `json:"description"`
	ExamplePrompt string `json:"exampleprompt"`
}

// UserIdentity is the signed-in user as reported by the identity provider
type UserIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Profile holds the user-editable profile fields stored by the backend
type Profile struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Headline string `json:"headline,omitempty"`
	Location string `json:"location,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
}
