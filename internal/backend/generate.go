package backend

import (
	"context"
	"encoding/base64"
	"strings"

	"latexify/internal/errors"
	"latexify/internal/types"
)

// GenerateRequest carries everything the backend needs to produce a resume
type GenerateRequest struct {
	Prompt        string                `json:"prompt"`
	ExtractedText string                `json:"extracted_text,omitempty"`
	TemplateID    string                `json:"template_id,omitempty"`
	Options       types.CompilerOptions `json:"options"`
}

type latexResponse struct {
	LatexCode string `json:"latex_code"`
	Error     string `json:"error,omitempty"`
}

// GenerateLaTeX asks the backend to turn a free-form prompt (plus any
// extracted resume text) into a LaTeX document
func (c *Client) GenerateLaTeX(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := postJSON[latexResponse](ctx, c, OpGenerate, "/generate-latex", req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.LatexCode) == "" {
		return "", errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned empty LaTeX document", nil)
	}
	return resp.LatexCode, nil
}

// UpdateLaTeX asks the backend to rewrite an existing LaTeX document
// according to a natural-language instruction. The response replaces the
// document wholesale.
func (c *Client) UpdateLaTeX(ctx context.Context, latexCode, instruction string) (string, error) {
	req := struct {
		LatexCode    string `json:"latex_code"`
		UpdatePrompt string `json:"update_prompt"`
	}{
		LatexCode:    latexCode,
		UpdatePrompt: instruction,
	}

	resp, err := postJSON[latexResponse](ctx, c, OpUpdate, "/update-latex", req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.LatexCode) == "" {
		return "", errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned empty LaTeX document", nil)
	}
	return resp.LatexCode, nil
}

// CompileLaTeX compiles a LaTeX document to PDF on the backend and returns
// the decoded PDF bytes
func (c *Client) CompileLaTeX(ctx context.Context, latexCode string, opts types.CompilerOptions) ([]byte, error) {
	req := struct {
		LatexCode string                `json:"latex_code"`
		Options   types.CompilerOptions `json:"options"`
	}{
		LatexCode: latexCode,
		Options:   opts,
	}

	resp, err := postJSON[struct {
		PDFBase64 string `json:"pdf_base64"`
		Error     string `json:"error,omitempty"`
	}](ctx, c, OpCompile, "/compile-latex", req)
	if err != nil {
		return nil, err
	}

	pdf, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
	if err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned PDF that is not valid base64", err)
	}
	if len(pdf) == 0 {
		return nil, errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned an empty PDF", nil)
	}
	return pdf, nil
}

// EnhancePrompt asks the backend to rewrite a rough prompt into a richer one
func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	req := struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt}

	resp, err := postJSON[struct {
		EnhancedPrompt string `json:"enhanced_prompt"`
		Error          string `json:"error,omitempty"`
	}](ctx, c, OpEnhance, "/enhance-prompt", req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.EnhancedPrompt) == "" {
		return "", errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned an empty enhanced prompt", nil)
	}
	return resp.EnhancedPrompt, nil
}
