package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"latexify/internal/types"
	"latexify/internal/utils"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "TemplateList", &TemplateListTextFormatter{})
	registry.RegisterFormatter("markdown", "TemplateList", &TemplateListMarkdownFormatter{})
	registry.RegisterFormatter("text", "ArtifactList", &ArtifactListTextFormatter{})
	registry.RegisterFormatter("markdown", "ArtifactList", &ArtifactListMarkdownFormatter{})
	registry.RegisterFormatter("text", "SessionSummary", &SessionTextFormatter{})
	registry.RegisterFormatter("markdown", "SessionSummary", &SessionMarkdownFormatter{})
	registry.RegisterFormatter("text", "Profile", &ProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "Profile", &ProfileTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists && formatter != nil {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case []types.Template:
		return "TemplateList"
	case []types.SavedArtifact:
		return "ArtifactList"
	case types.SessionSummary:
		return "SessionSummary"
	case types.Profile, *types.Profile:
		return "Profile"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asAnalysisResult(data any) (*types.AnalysisResult, error) {
	switch result := data.(type) {
	case types.AnalysisResult:
		return &result, nil
	case *types.AnalysisResult:
		return result, nil
	default:
		return nil, fmt.Errorf("expected AnalysisResult, got %T", data)
	}
}

// AnalysisTextFormatter handles text formatting for ATS analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== ATS ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %d/100 (%s)\n\n", result.Score, scoreMessage(result.Score)))

	if len(result.Strengths) > 0 {
		output.WriteString("Strengths:\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(result.Improvements) > 0 {
		output.WriteString("Improvements:\n")
		for i, improvement := range result.Improvements {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, improvement))
		}
		output.WriteString("\n")
	}

	if len(result.MissingKeywords) > 0 {
		output.WriteString("Missing Keywords:\n")
		output.WriteString(strings.Join(result.MissingKeywords, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for ATS analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# ATS Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100 (%s)\n\n", result.Score, scoreMessage(result.Score)))

	if len(result.Strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(result.Improvements) > 0 {
		output.WriteString("## Improvements\n\n")
		for i, improvement := range result.Improvements {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, improvement))
		}
		output.WriteString("\n")
	}

	if len(result.MissingKeywords) > 0 {
		output.WriteString("## Missing Keywords\n\n")
		for _, keyword := range result.MissingKeywords {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

func scoreMessage(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// TemplateListTextFormatter handles text formatting for the template catalog
type TemplateListTextFormatter struct{}

func (tlf *TemplateListTextFormatter) Format(data any) (string, error) {
	templates, ok := data.([]types.Template)
	if !ok {
		return "", fmt.Errorf("expected []Template, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TEMPLATES ===\n\n")
	if len(templates) == 0 {
		output.WriteString("No templates available.\n")
		return output.String(), nil
	}

	category := ""
	for _, tmpl := range templates {
		if tmpl.Category != category {
			category = tmpl.Category
			output.WriteString(fmt.Sprintf("[%s]\n", category))
		}
		output.WriteString(fmt.Sprintf("  %-20s %s\n", tmpl.ID, tmpl.Name))
		if tmpl.Description != "" {
			output.WriteString(fmt.Sprintf("    %s\n", tmpl.Description))
		}
	}

	return output.String(), nil
}

func (tlf *TemplateListTextFormatter) SupportedType() string {
	return "TemplateList"
}

// TemplateListMarkdownFormatter handles markdown formatting for the template catalog
type TemplateListMarkdownFormatter struct{}

func (tmf *TemplateListMarkdownFormatter) Format(data any) (string, error) {
	templates, ok := data.([]types.Template)
	if !ok {
		return "", fmt.Errorf("expected []Template, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Templates\n\n")
	if len(templates) == 0 {
		output.WriteString("No templates available.\n")
		return output.String(), nil
	}

	category := ""
	for _, tmpl := range templates {
		if tmpl.Category != category {
			category = tmpl.Category
			output.WriteString(fmt.Sprintf("## %s\n\n", category))
		}
		output.WriteString(fmt.Sprintf("- **%s** (`%s`)", tmpl.Name, tmpl.ID))
		if tmpl.Description != "" {
			output.WriteString(fmt.Sprintf(" - %s", tmpl.Description))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (tmf *TemplateListMarkdownFormatter) SupportedType() string {
	return "TemplateList"
}

// ArtifactListTextFormatter handles text formatting for saved resume lists
type ArtifactListTextFormatter struct{}

func (alf *ArtifactListTextFormatter) Format(data any) (string, error) {
	artifacts, ok := data.([]types.SavedArtifact)
	if !ok {
		return "", fmt.Errorf("expected []SavedArtifact, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SAVED RESUMES ===\n\n")
	if len(artifacts) == 0 {
		output.WriteString("No saved resumes.\n")
		return output.String(), nil
	}

	for _, artifact := range artifacts {
		output.WriteString(fmt.Sprintf("%s  %s\n", artifact.ID, artifact.Title))
		if artifact.Description != "" {
			output.WriteString(fmt.Sprintf("    %s\n", artifact.Description))
		}
		if !artifact.CreatedAt.IsZero() {
			output.WriteString(fmt.Sprintf("    created %s\n", artifact.CreatedAt.Format("2006-01-02 15:04")))
		}
	}

	return output.String(), nil
}

func (alf *ArtifactListTextFormatter) SupportedType() string {
	return "ArtifactList"
}

// ArtifactListMarkdownFormatter handles markdown formatting for saved resume lists
type ArtifactListMarkdownFormatter struct{}

func (amf *ArtifactListMarkdownFormatter) Format(data any) (string, error) {
	artifacts, ok := data.([]types.SavedArtifact)
	if !ok {
		return "", fmt.Errorf("expected []SavedArtifact, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Saved Resumes\n\n")
	if len(artifacts) == 0 {
		output.WriteString("No saved resumes.\n")
		return output.String(), nil
	}

	output.WriteString("| ID | Title | Created |\n")
	output.WriteString("|---|---|---|\n")
	for _, artifact := range artifacts {
		created := ""
		if !artifact.CreatedAt.IsZero() {
			created = artifact.CreatedAt.Format("2006-01-02")
		}
		output.WriteString(fmt.Sprintf("| %s | %s | %s |\n", artifact.ID, artifact.Title, created))
	}

	return output.String(), nil
}

func (amf *ArtifactListMarkdownFormatter) SupportedType() string {
	return "ArtifactList"
}

// SessionTextFormatter handles text formatting for session status
type SessionTextFormatter struct{}

func (stf *SessionTextFormatter) Format(data any) (string, error) {
	summary, ok := data.(types.SessionSummary)
	if !ok {
		return "", fmt.Errorf("expected SessionSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SESSION ===\n\n")
	output.WriteString(fmt.Sprintf("ID:       %s\n", summary.ID))
	output.WriteString(fmt.Sprintf("State:    %s\n", summary.State))
	if summary.TemplateID != "" {
		output.WriteString(fmt.Sprintf("Template: %s\n", summary.TemplateID))
	}
	if summary.PromptPreview != "" {
		output.WriteString(fmt.Sprintf("Prompt:   %s\n", summary.PromptPreview))
	}
	if summary.HasLatex {
		output.WriteString(fmt.Sprintf("LaTeX:    %s\n", utils.FormatFileSize(int64(summary.LatexBytes))))
	}
	if summary.HasPDF {
		staleNote := ""
		if summary.Stale {
			staleNote = " (stale, recompile to refresh)"
		}
		output.WriteString(fmt.Sprintf("PDF:      %s%s\n", utils.FormatFileSize(int64(summary.PDFBytes)), staleNote))
	}
	if summary.LastError != nil {
		output.WriteString(fmt.Sprintf("Error:    [%s] %s\n", summary.LastError.Code, summary.LastError.Message))
	}

	return output.String(), nil
}

func (stf *SessionTextFormatter) SupportedType() string {
	return "SessionSummary"
}

// SessionMarkdownFormatter handles markdown formatting for session status
type SessionMarkdownFormatter struct{}

func (smf *SessionMarkdownFormatter) Format(data any) (string, error) {
	summary, ok := data.(types.SessionSummary)
	if !ok {
		return "", fmt.Errorf("expected SessionSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Session\n\n")
	output.WriteString(fmt.Sprintf("- **ID:** %s\n", summary.ID))
	output.WriteString(fmt.Sprintf("- **State:** %s\n", summary.State))
	if summary.TemplateID != "" {
		output.WriteString(fmt.Sprintf("- **Template:** %s\n", summary.TemplateID))
	}
	if summary.HasLatex {
		output.WriteString(fmt.Sprintf("- **LaTeX:** %s\n", utils.FormatFileSize(int64(summary.LatexBytes))))
	}
	if summary.HasPDF {
		output.WriteString(fmt.Sprintf("- **PDF:** %s (stale: %t)\n",
			utils.FormatFileSize(int64(summary.PDFBytes)), summary.Stale))
	}
	if summary.LastError != nil {
		output.WriteString(fmt.Sprintf("- **Error:** [%s] %s\n", summary.LastError.Code, summary.LastError.Message))
	}

	return output.String(), nil
}

func (smf *SessionMarkdownFormatter) SupportedType() string {
	return "SessionSummary"
}

// ProfileTextFormatter handles text formatting for user profiles
type ProfileTextFormatter struct{}

func (ptf *ProfileTextFormatter) Format(data any) (string, error) {
	var profile *types.Profile
	switch p := data.(type) {
	case types.Profile:
		profile = &p
	case *types.Profile:
		profile = p
	default:
		return "", fmt.Errorf("expected Profile, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PROFILE ===\n\n")
	output.WriteString(fmt.Sprintf("UID:       %s\n", profile.UID))
	output.WriteString(fmt.Sprintf("Email:     %s\n", profile.Email))
	if profile.FullName != "" {
		output.WriteString(fmt.Sprintf("Full name: %s\n", profile.FullName))
	}
	if profile.Headline != "" {
		output.WriteString(fmt.Sprintf("Headline:  %s\n", profile.Headline))
	}
	if profile.Location != "" {
		output.WriteString(fmt.Sprintf("Location:  %s\n", profile.Location))
	}

	return output.String(), nil
}

func (ptf *ProfileTextFormatter) SupportedType() string {
	return "Profile"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
