package templates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"latexify/internal/errors"
	"latexify/internal/types"

	gocache "github.com/patrickmn/go-cache"
)

const catalogKey = "catalog"

// Backend is the slice of the backend client the catalog drives
type Backend interface {
	GetTemplates(ctx context.Context) ([]types.Template, error)
}

// Catalog serves the resume template list, caching the backend response for
// a TTL so browsing does not refetch on every command
type Catalog struct {
	backend Backend
	cache   *gocache.Cache
	logger  *errors.Logger
}

// NewCatalog creates a catalog with the given cache TTL
func NewCatalog(be Backend, ttl time.Duration, logger *errors.Logger) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{
		backend: be,
		cache:   gocache.New(ttl, 2*ttl),
		logger:  logger,
	}
}

// List returns all templates, sorted by category then name. Served from
// cache when fresh.
func (c *Catalog) List(ctx context.Context) ([]types.Template, error) {
	if cached, found := c.cache.Get(catalogKey); found {
		return cached.([]types.Template), nil
	}

	templates, err := c.backend.GetTemplates(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Category != templates[j].Category {
			return templates[i].Category < templates[j].Category
		}
		return templates[i].Name < templates[j].Name
	})

	c.cache.SetDefault(catalogKey, templates)
	if c.logger != nil {
		c.logger.Debug("Template catalog refreshed", "count", len(templates))
	}
	return templates, nil
}

// Find returns the template with the given id
func (c *Catalog) Find(ctx context.Context, id string) (*types.Template, error) {
	templates, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("Unknown template %q", id), nil)
}

// Invalidate drops the cached catalog
func (c *Catalog) Invalidate() {
	c.cache.Delete(catalogKey)
}
