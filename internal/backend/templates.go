package backend

import (
	"context"

	"latexify/internal/types"
)

// GetTemplates fetches the template catalog. The backend returns a map keyed
// by template id; entries missing an explicit id inherit their map key.
func (c *Client) GetTemplates(ctx context.Context) ([]types.Template, error) {
	raw, err := getJSON[map[string]types.Template](ctx, c, OpTemplates, "/get-templates")
	if err != nil {
		return nil, err
	}

	templates := make([]types.Template, 0, len(raw))
	for id, tmpl := range raw {
		if tmpl.ID == "" {
			tmpl.ID = id
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
