package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levkina/flashdeck/internal/config"
)

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()

	cfg.Port = 8080
	cfg.DBPath = ":memory:"
	cfg.TemplateDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.db.Close() })
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	for _, path := range []string{"/", "/about", "/cards/catalog"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	// A page hit first so the request counter has something to report.
	get(t, srv, "/")

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flashdeck_http_requests_total")
}

func TestAuthDisabled_NoLoginRoutes(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	rec := get(t, srv, "/login")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv, "/cards/add")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthEnabled_AdminRoutesGated(t *testing.T) {
	srv := newTestServer(t, config.Config{
		JWTSecret: "test-secret-at-least-16-chars!!",
	})

	rec := get(t, srv, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Anonymous visit to the admin form bounces to the login page.
	rec = get(t, srv, "/cards/add")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login")
}
