// Package markdown renders card answers to HTML.
//
// Answers are authored as markdown with fenced code blocks (the same
// blocks the validate package checks on submission). Rendering happens at
// page-build time in the detail and preview handlers; catalog pages show
// the raw question text only.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown answer text to HTML. Safe for concurrent use;
// construct once at startup and share.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GitHub Flavored Markdown enabled,
// which covers the fenced code blocks and tables used in answers.
// Raw HTML in the source is escaped, not passed through, since answers
// come from form input.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render converts markdown source to HTML.
//
// The result is template.HTML so templates insert it without re-escaping.
// That is safe because goldmark escapes raw HTML in the source by default
// (we do not enable html.WithUnsafe).
func (r *Renderer) Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown: rendering: %w", err)
	}
	return template.HTML(buf.String()), nil
}
