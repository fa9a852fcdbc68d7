// Package handler contains the HTTP handlers: HTML pages rendered from
// templates plus a small JSON API. Handlers parse requests and render
// responses; all rules live in the service layer.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/levkina/flashdeck/internal/auth"
)

// pages are the content templates, each parsed together with base.html so
// it can fill the base layout's content block.
var pages = []string{
	"index.html",
	"about.html",
	"catalog.html",
	"card_detail.html",
	"add_card.html",
	"login.html",
}

// Renderer holds the parsed template set per page. Parsing happens once
// at startup; a bad template fails the boot instead of the first request.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses every page template against the base layout.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	base := filepath.Join(templateDir, "base.html")

	for _, page := range pages {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, page))
		if err != nil {
			return nil, fmt.Errorf("handler: parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// render executes the base layout for the named page. LoggedIn is filled
// from the request context on every page so the menu can swap its links.
func (rd *Renderer) render(w http.ResponseWriter, r *http.Request, page string, status int, data map[string]any) {
	tmpl, ok := rd.templates[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]any)
	}
	if _, ok := data["LoggedIn"]; !ok {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["LoggedIn"] = loggedIn
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
