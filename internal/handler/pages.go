package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/markdown"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/service"
)

// PageHandler serves the public HTML pages: home, about, the sortable
// catalog, and the card detail view.
type PageHandler struct {
	renderer *Renderer
	cards    *service.CardService
	markdown *markdown.Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(
	renderer *Renderer,
	cards *service.CardService,
	md *markdown.Renderer,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		cards:    cards,
		markdown: md,
		logger:   logger,
	}
}

// HandleIndex serves the home page with the most recently uploaded cards.
//
// HTTP: GET /
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.List(r.Context(), "", "")
	if err != nil {
		h.logger.Error("index: listing cards", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(cards) > 6 {
		cards = cards[:6]
	}

	h.renderer.render(w, r, "index.html", http.StatusOK, map[string]any{
		"Title": "FlashDeck",
		"Cards": cards,
	})
}

// HandleAbout serves the static about page.
//
// HTTP: GET /about
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, r, "about.html", http.StatusOK, map[string]any{
		"Title": "About - FlashDeck",
	})
}

// HandleCatalog serves the card catalog.
//
// HTTP: GET /cards/catalog?sort=views&order=asc
//
// The raw sort and order values go straight to the service, which owns
// the fallback rules; the handler just echoes them back into the template
// so the sort links can mark the active column.
func (h *PageHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	cards, err := h.cards.List(r.Context(), sort, order)
	if err != nil {
		h.logger.Error("catalog: listing cards", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tags, err := h.cards.Tags(r.Context())
	if err != nil {
		h.logger.Error("catalog: listing tags", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories, err := h.cards.Categories(r.Context())
	if err != nil {
		h.logger.Error("catalog: listing categories", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.render(w, r, "catalog.html", http.StatusOK, map[string]any{
		"Title":      "Catalog - FlashDeck",
		"Cards":      cards,
		"Tags":       tags,
		"Categories": categories,
		"Sort":       sort,
		"Order":      order,
	})
}

// HandleCardDetail serves a single card and counts the view.
//
// HTTP: GET /cards/{id}
func (h *PageHandler) HandleCardDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("card detail", slog.String("id", id), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	answerHTML, err := h.markdown.Render(card.Answer)
	if err != nil {
		h.logger.Error("card detail: rendering answer",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.render(w, r, "card_detail.html", http.StatusOK, map[string]any{
		"Title":      card.Question + " - FlashDeck",
		"Card":       card,
		"AnswerHTML": answerHTML,
	})
}

// HandleCardsByTag serves the catalog filtered to one tag.
//
// HTTP: GET /tags/{id}
func (h *PageHandler) HandleCardsByTag(w http.ResponseWriter, r *http.Request) {
	h.handleFiltered(w, r, "tag", h.cards.ListByTag)
}

// HandleCardsByCategory serves the catalog filtered to one category.
//
// HTTP: GET /categories/{id}
func (h *PageHandler) HandleCardsByCategory(w http.ResponseWriter, r *http.Request) {
	h.handleFiltered(w, r, "category", h.cards.ListByCategory)
}

func (h *PageHandler) handleFiltered(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	list func(ctx context.Context, id string) ([]model.Card, error),
) {
	id := chi.URLParam(r, "id")

	cards, err := list(r.Context(), id)
	if err != nil {
		h.logger.Error("filtered catalog",
			slog.String("kind", kind),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tags, err := h.cards.Tags(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categories, err := h.cards.Categories(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.render(w, r, "catalog.html", http.StatusOK, map[string]any{
		"Title":      "Catalog - FlashDeck",
		"Cards":      cards,
		"Tags":       tags,
		"Categories": categories,
		"Sort":       "",
		"Order":      "",
	})
}
