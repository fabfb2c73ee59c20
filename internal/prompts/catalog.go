// Package prompts holds the embedded style prompt templates and renders
// them into provider-ready prompts.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"musemind/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// entry is one compiled style template with its required variables.
type entry struct {
	tmpl     *template.Template
	raw      string
	required []string
}

// Catalog maps generation styles to their prompt templates.
type Catalog struct {
	entries map[types.Style]*entry
}

// NewCatalog compiles the embedded templates. Every style must have a
// template file named templates/<style>.tmpl.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{entries: make(map[types.Style]*entry)}

	for _, style := range types.AllStyles() {
		name := string(style) + ".tmpl"
		raw, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("missing template for style %s: %w", style, err)
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		c.entries[style] = &entry{
			tmpl:     tmpl,
			raw:      string(raw),
			required: ExtractVariables(string(raw)),
		}
	}

	return c, nil
}

// Render fills the template for a style with the given variables. All
// variables the template references must be present.
func (c *Catalog) Render(style types.Style, vars map[string]any) (string, error) {
	e, ok := c.entries[style]
	if !ok {
		return "", types.E(types.ErrUnknownStyle, "no template for style %q", style)
	}

	for _, name := range e.required {
		if _, present := vars[name]; !present {
			return "", types.E(types.ErrMissingVariable, "template %s requires variable %q", style, name)
		}
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, vars); err != nil {
		return "", types.E(types.ErrMissingVariable, "template %s execution failed: %v", style, err)
	}
	return buf.String(), nil
}

// Required returns the variable names a style's template references,
// sorted.
func (c *Catalog) Required(style types.Style) ([]string, error) {
	e, ok := c.entries[style]
	if !ok {
		return nil, types.E(types.ErrUnknownStyle, "no template for style %q", style)
	}
	out := make([]string, len(e.required))
	copy(out, e.required)
	return out, nil
}

// Styles returns every style the catalog has a template for, sorted.
func (c *Catalog) Styles() []types.Style {
	styles := make([]types.Style, 0, len(c.entries))
	for s := range c.entries {
		styles = append(styles, s)
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i] < styles[j] })
	return styles
}
