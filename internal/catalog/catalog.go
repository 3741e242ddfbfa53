package catalog

import (
	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
	"github.com/neetkit/cardforge/internal/random"
)

// ErrEmptyCatalog is returned when generation is attempted without templates.
var ErrEmptyCatalog = apperrors.New(apperrors.CodeEmptyCatalog, "no templates available to generate from")

// Catalog is an ordered, read-only set of templates.
type Catalog struct {
	templates []Template
}

// New builds a catalog from templates, keeping their order.
func New(templates ...Template) *Catalog {
	cloned := make([]Template, len(templates))
	for i, tmpl := range templates {
		tmpl.Fields = append([]Field(nil), tmpl.Fields...)
		cloned[i] = tmpl
	}
	return &Catalog{templates: cloned}
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}

// Templates returns a copy of the templates in order.
func (c *Catalog) Templates() []Template {
	if c == nil {
		return nil
	}
	out := make([]Template, len(c.templates))
	for i, tmpl := range c.templates {
		tmpl.Fields = append([]Field(nil), tmpl.Fields...)
		out[i] = tmpl
	}
	return out
}

// SelectAndPopulate picks one template uniformly and resolves its fields.
func (c *Catalog) SelectAndPopulate(src *random.Source) (Template, map[string]any, error) {
	if c.Len() == 0 {
		return Template{}, nil, ErrEmptyCatalog
	}
	tmpl, _ := random.Choose(src, c.templates)
	return tmpl, tmpl.Populate(src), nil
}
