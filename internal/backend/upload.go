package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"latexify/internal/errors"
)

// ExtractResumeText uploads a PDF resume and returns the text the backend
// extracted from it. The reader supplies the file content; filename is used
// for the multipart part and server-side type detection.
func (c *Client) ExtractResumeText(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("resume_file", filepath.Base(filename))
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to build multipart upload", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read %s for upload", filename), err)
	}
	if err := writer.Close(); err != nil {
		return "", errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to finalize multipart upload", err)
	}

	data, err := c.do(ctx, OpUpload, http.MethodPost, "/upload-resume-pdf",
		&body, writer.FormDataContentType())
	if err != nil {
		return "", err
	}

	resp, err := decodeJSON[struct {
		ExtractedText string `json:"extracted_text"`
		Error         string `json:"error,omitempty"`
	}](data, "/upload-resume-pdf")
	if err != nil {
		return "", err
	}

	// The extraction endpoint reports some failures as 200 with an error field.
	if resp.Error != "" {
		return "", errors.NewBackendError(errors.ErrCodeUploadFailed, resp.Error, nil)
	}
	if strings.TrimSpace(resp.ExtractedText) == "" {
		return "", errors.NewBackendError(errors.ErrCodeUploadFailed,
			"Backend extracted no text from the uploaded file", nil)
	}
	return resp.ExtractedText, nil
}
