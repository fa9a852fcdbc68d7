package markdown

import (
	"strings"
	"testing"
)

func TestRender_FencedCodeBlock(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("```python\n\nprint('hi')\n```")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(out), "<code") {
		t.Errorf("Render() = %q, want a <code> element", out)
	}
	if !strings.Contains(string(out), "language-python") {
		t.Errorf("Render() = %q, want the language class from the fence info", out)
	}
}

func TestRender_EscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Errorf("Render() passed raw HTML through: %q", out)
	}
}

func TestRender_PlainText(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("just a sentence")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(out), "just a sentence") {
		t.Errorf("Render() = %q, want the text preserved", out)
	}
}
