// Package render maps an article's text_type to the engine that turns
// its source text into stored content.
package render

import (
	"bytes"
	"fmt"
	"html"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer describes a single markup engine.
type Renderer struct {
	Ext         string `json:"ext"`
	Name        string `json:"name"`
	Description string `json:"description"`

	render func(source string) (string, error)
}

// Error wraps a failure inside a markup engine so callers can tell a
// render failure apart from an unsupported type.
type Error struct {
	Ext string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Ext, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Registry holds the supported markup engines keyed by extension.
type Registry struct {
	renderers map[string]*Renderer
}

// NewRegistry creates a registry with the built-in engines registered.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]*Renderer)}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	r.Register("md", "Markdown", "GitHub-flavored Markdown with fenced code blocks",
		func(source string) (string, error) {
			var buf bytes.Buffer
			if err := md.Convert([]byte(source), &buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		})

	r.Register("txt", "Plain Text", "HTML-escaped plain text",
		func(source string) (string, error) {
			return "<pre>" + html.EscapeString(source) + "</pre>", nil
		})

	return r
}

// Register adds a markup engine. Registering an extension twice panics,
// matching the invariant that an extension maps to exactly one engine.
func (r *Registry) Register(ext, name, description string, fn func(string) (string, error)) {
	if _, dup := r.renderers[ext]; dup {
		panic("render: extension already registered: " + ext)
	}
	r.renderers[ext] = &Renderer{
		Ext:         ext,
		Name:        name,
		Description: description,
		render:      fn,
	}
}

// Supports reports whether the registry has an engine for ext.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.renderers[ext]
	return ok
}

// Render converts source text using the engine registered for ext.
func (r *Registry) Render(ext, source string) (string, error) {
	renderer, ok := r.renderers[ext]
	if !ok {
		return "", fmt.Errorf("render: unsupported text type %q", ext)
	}
	out, err := renderer.render(source)
	if err != nil {
		return "", &Error{Ext: ext, Err: err}
	}
	return out, nil
}

// Supported lists the registered engines sorted by extension.
func (r *Registry) Supported() []Renderer {
	out := make([]Renderer, 0, len(r.renderers))
	for _, renderer := range r.renderers {
		out = append(out, *renderer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ext < out[j].Ext })
	return out
}
