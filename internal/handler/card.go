package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/markdown"
	"github.com/levkina/flashdeck/internal/service"
)

// CardHandler serves the admin card form and the small JSON API behind
// the catalog buttons.
type CardHandler struct {
	renderer *Renderer
	cards    *service.CardService
	markdown *markdown.Renderer
	logger   *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(
	renderer *Renderer,
	cards *service.CardService,
	md *markdown.Renderer,
	logger *slog.Logger,
) *CardHandler {
	return &CardHandler{
		renderer: renderer,
		cards:    cards,
		markdown: md,
		logger:   logger,
	}
}

// HandleAddForm serves the empty card form.
//
// HTTP: GET /cards/add (admin only)
func (h *CardHandler) HandleAddForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, nil, nil)
}

// HandleAddSubmit processes a card submission. A validation failure
// re-renders the form with the error next to the offending field and the
// entered values preserved; success redirects to the new card's page.
//
// HTTP: POST /cards/add (admin only)
func (h *CardHandler) HandleAddSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	form := map[string]string{
		"question": r.PostFormValue("question"),
		"answer":   r.PostFormValue("answer"),
		"category": r.PostFormValue("category"),
		"tags":     r.PostFormValue("tags"),
	}

	card, err := h.cards.Create(r.Context(),
		form["question"], form["answer"], form["category"], form["tags"])
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, form, map[string]string{
				appErr.Field: appErr.Message,
			})
			return
		}
		h.logger.Error("add card", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/cards/"+card.ID, http.StatusSeeOther)
}

func (h *CardHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form, fieldErrors map[string]string) {
	categories, err := h.cards.Categories(r.Context())
	if err != nil {
		h.logger.Error("add card form: listing categories", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.render(w, r, "add_card.html", status, map[string]any{
		"Title":       "Add card - FlashDeck",
		"Categories":  categories,
		"Form":        form,
		"FieldErrors": fieldErrors,
	})
}

// HandleAddToDeck bumps a card's adds counter.
//
// HTTP: POST /api/cards/{id}/add
//
// Called from the catalog's "add to my deck" button via fetch; the
// response carries the new count so the page can update in place.
func (h *CardHandler) HandleAddToDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	adds, err := h.cards.AddToDeck(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"adds": adds})
}

// categoryRequest is the body of the category creation call.
type categoryRequest struct {
	Name string `json:"name"`
}

// HandleCreateCategory adds a category.
//
// HTTP: POST /api/categories (admin only)
func (h *CardHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperror.ValidationFailed("name", "invalid JSON body"))
		return
	}

	category, err := h.cards.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// previewRequest is the body of the markdown preview call.
type previewRequest struct {
	Markdown string `json:"markdown"`
}

// HandlePreview renders markdown for the card form's live preview pane.
// The source is validated the same way a submission would be, so the
// author sees fence mistakes before submitting.
//
// HTTP: POST /api/preview (admin only)
func (h *CardHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperror.ValidationFailed("markdown", "invalid JSON body"))
		return
	}

	if err := h.cards.CheckAnswer(req.Markdown); err != nil {
		writeError(w, err)
		return
	}

	html, err := h.markdown.Render(req.Markdown)
	if err != nil {
		h.logger.Error("preview: rendering markdown", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"html": string(html)})
}
