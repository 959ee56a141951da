package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"latexify/internal/errors"
	"latexify/internal/types"
)

// SaveResumeRequest carries a compiled resume plus its owner for persistence
type SaveResumeRequest struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	PDFBase64   string `json:"pdf_base64"`
	LatexCode   string `json:"latex_code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TemplateID  string `json:"template_id"`
}

// SaveResume stores a compiled resume on the backend and returns the saved
// artifact record
func (c *Client) SaveResume(ctx context.Context, req SaveResumeRequest) (*types.SavedArtifact, error) {
	artifact, err := postJSON[types.SavedArtifact](ctx, c, OpProfile, "/save-resume-pdf", req)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// ListResumes returns the saved artifacts belonging to a user
func (c *Client) ListResumes(ctx context.Context, uid string) ([]types.SavedArtifact, error) {
	path := fmt.Sprintf("/user/%s/resumes", url.PathEscape(uid))
	resp, err := getJSON[struct {
		Resumes []types.SavedArtifact `json:"resumes"`
	}](ctx, c, OpProfile, path)
	if err != nil {
		return nil, err
	}
	return resp.Resumes, nil
}

// DeleteResume removes one saved artifact by id
func (c *Client) DeleteResume(ctx context.Context, id string) error {
	path := fmt.Sprintf("/resumes/%s", url.PathEscape(id))
	_, err := c.do(ctx, OpProfile, http.MethodDelete, path, nil, "")
	return err
}

// GetProfile fetches a user's stored profile
func (c *Client) GetProfile(ctx context.Context, uid string) (*types.Profile, error) {
	path := fmt.Sprintf("/user/%s", url.PathEscape(uid))
	profile, err := getJSON[types.Profile](ctx, c, OpProfile, path)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the user-editable profile fields and returns the
// record as stored
func (c *Client) UpdateProfile(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to encode profile", err)
	}

	path := fmt.Sprintf("/user/%s/profile", url.PathEscape(profile.UID))
	data, err := c.doWithBreaker(ctx, OpProfile, http.MethodPut, path, body, "application/json")
	if err != nil {
		return nil, err
	}

	updated, err := decodeJSON[types.Profile](data, path)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SaveUser pushes the authenticated identity to the backend so the user
// record exists before any save or profile call
func (c *Client) SaveUser(ctx context.Context, identity types.UserIdentity) error {
	req := struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
		UID         string `json:"uid"`
	}{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		UID:         identity.UID,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to encode user identity", err)
	}

	_, err = c.doWithBreaker(ctx, OpProfile, http.MethodPost, "/save-user", body, "application/json")
	return err
}

// DownloadPDF round-trips a PDF through the backend's download route and
// returns the binary response
func (c *Client) DownloadPDF(ctx context.Context, pdf []byte) ([]byte, error) {
	req := struct {
		PDFBase64 string `json:"pdf_base64"`
	}{PDFBase64: base64.StdEncoding.EncodeToString(pdf)}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeUnexpected,
			"Failed to encode download request", err)
	}

	data, err := c.doWithBreaker(ctx, OpProfile, http.MethodPost, "/download-pdf", body, "application/json")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.NewBackendError(errors.ErrCodeBackendResponse,
			"Backend returned an empty PDF", nil)
	}
	return data, nil
}
