package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levkina/flashdeck/internal/markdown"
	"github.com/levkina/flashdeck/internal/model"
	sqliteRepo "github.com/levkina/flashdeck/internal/repository/sqlite"
	"github.com/levkina/flashdeck/internal/service"
)

// testEnv wires real services over an in-memory database and the real
// templates, mounted on a chi router without the auth middleware.
type testEnv struct {
	router *chi.Mux
	cards  *service.CardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cardService := service.NewCardService(
		sqliteRepo.NewCardRepo(db),
		sqliteRepo.NewTagRepo(db),
		sqliteRepo.NewCategoryRepo(db),
		logger,
	)

	renderer, err := NewRenderer("../../web/templates", logger)
	require.NoError(t, err)

	md := markdown.NewRenderer()
	pageHandler := NewPageHandler(renderer, cardService, md, logger)
	cardHandler := NewCardHandler(renderer, cardService, md, logger)

	router := chi.NewRouter()
	router.Get("/", pageHandler.HandleIndex)
	router.Get("/cards/catalog", pageHandler.HandleCatalog)
	router.Get("/cards/add", cardHandler.HandleAddForm)
	router.Post("/cards/add", cardHandler.HandleAddSubmit)
	router.Get("/cards/{id}", pageHandler.HandleCardDetail)
	router.Get("/tags/{id}", pageHandler.HandleCardsByTag)
	router.Post("/api/cards/{id}/add", cardHandler.HandleAddToDeck)
	router.Post("/api/preview", cardHandler.HandlePreview)
	router.Post("/api/categories", cardHandler.HandleCreateCategory)

	return &testEnv{router: router, cards: cardService}
}

func (e *testEnv) createCard(t *testing.T, question string) *model.Card {
	t.Helper()
	card, err := e.cards.Create(context.Background(), question, "an answer", "", "")
	require.NoError(t, err)
	return card
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCatalog_ShowsCards(t *testing.T) {
	env := newTestEnv(t)
	env.createCard(t, "What is a goroutine?")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/cards/catalog", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "What is a goroutine?")
}

func TestCatalog_SortOrderReflectedInPage(t *testing.T) {
	env := newTestEnv(t)
	first := env.createCard(t, "first-question")
	second := env.createCard(t, "second-question")

	// Give the first card two adds so sort=adds&order=asc puts it last.
	for i := 0; i < 2; i++ {
		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/cards/"+first.ID+"/add", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	_ = second

	rec := env.do(httptest.NewRequest(http.MethodGet, "/cards/catalog?sort=adds&order=asc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "second-question"), strings.Index(body, "first-question"),
		"ascending adds should list the zero-adds card first")
}

func TestCardDetail_RendersMarkdownAndCountsView(t *testing.T) {
	env := newTestEnv(t)
	card, err := env.cards.Create(context.Background(),
		"q", "Some *emphasis* here.\n```go\n\nx := 1\n```", "", "")
	require.NoError(t, err)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/cards/"+card.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<em>emphasis</em>")
	assert.Contains(t, body, "<pre>")
	assert.Contains(t, body, "1 views")
}

func TestCardDetail_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/cards/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCard_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/cards/add", url.Values{
		"question": {"What does defer do?"},
		"answer":   {"Schedules a call for function exit."},
		"tags":     {"go,basics"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/cards/"), "Location = %s", location)

	detail := env.do(httptest.NewRequest(http.MethodGet, location, nil))
	assert.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "What does defer do?")
}

func TestAddCard_SpacedTagsRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/cards/add", url.Values{
		"question": {"q"},
		"answer":   {"a"},
		"tags":     {"go, python"},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	// The form is re-rendered with the entered values preserved.
	assert.Contains(t, body, "go, python")
	assert.Contains(t, body, "field-error")
}

func TestAddCard_BadFenceRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/cards/add", url.Values{
		"question": {"q"},
		"answer":   {"```\ncode\n```"},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field-error")
}

func TestAddForm_Renders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/cards/add", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "name=\"question\"")
}

func TestAddToDeck_ReturnsNewCount(t *testing.T) {
	env := newTestEnv(t)
	card := env.createCard(t, "q")

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/cards/"+card.ID+"/add", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["adds"])
}

func TestAddToDeck_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/cards/nope/add", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreview_RendersMarkdown(t *testing.T) {
	env := newTestEnv(t)

	body := strings.NewReader(`{"markdown":"**bold** text"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", "application/json")

	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["html"], "<strong>bold</strong>")
}

func TestPreview_RejectsBadFence(t *testing.T) {
	env := newTestEnv(t)

	body := strings.NewReader(`{"markdown":"see ` + "```" + ` broken"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", "application/json")

	rec := env.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "answer", resp.Field)
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/categories",
		strings.NewReader(`{"name":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var category model.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))
	assert.NotEmpty(t, category.ID)

	// A duplicate name conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/categories",
		strings.NewReader(`{"name":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCardsByTag_FiltersCatalog(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cards.Create(context.Background(), "tagged-question", "a", "", "go")
	require.NoError(t, err)
	env.createCard(t, "untagged-question")

	tags, err := env.cards.Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 1)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/tags/"+tags[0].ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tagged-question")
	assert.NotContains(t, body, "untagged-question")
}
