package backend

import (
	"context"
	"encoding/base64"

	"latexify/internal/errors"
	"latexify/internal/types"
)

type analysisResponse struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	MissingKeywords []string `json:"missing_keywords"`
	Error           string   `json:"error,omitempty"`
}

// AnalyzeATS submits a compiled PDF for applicant-tracking-system scoring
// against an optional job title and company
func (c *Client) AnalyzeATS(ctx context.Context, pdf []byte, jobTitle, company string) (*types.AnalysisResult, error) {
	req := struct {
		PDFBase64 string `json:"pdf_base64"`
		JobTitle  string `json:"job_title"`
		Company   string `json:"company"`
	}{
		PDFBase64: base64.StdEncoding.EncodeToString(pdf),
		JobTitle:  jobTitle,
		Company:   company,
	}

	resp, err := postJSON[analysisResponse](ctx, c, OpAnalyze, "/api/ats-analysis", req)
	if err != nil {
		return nil, err
	}

	// The analyzer reports some failures as 200 with an error field.
	if resp.Error != "" {
		return nil, errors.NewBackendError(errors.ErrCodeAnalysisFailed, resp.Error, nil)
	}

	return &types.AnalysisResult{
		Score:           resp.Score,
		Strengths:       resp.Strengths,
		Improvements:    resp.Improvements,
		MissingKeywords: resp.MissingKeywords,
	}, nil
}
