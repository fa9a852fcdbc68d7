package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/auth"
	"github.com/levkina/flashdeck/internal/service"
)

var sessionCookieMaxAge = int((24 * time.Hour).Seconds())

// AuthHandler serves the login page, the local password login, and the
// GitHub OAuth flow.
type AuthHandler struct {
	renderer *Renderer
	auths    *service.AuthService
	github   *auth.GitHubProvider
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when OAuth is
// not configured; the login page then only shows the password form.
func NewAuthHandler(
	renderer *Renderer,
	auths *service.AuthService,
	github *auth.GitHubProvider,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		renderer: renderer,
		auths:    auths,
		github:   github,
		logger:   logger,
	}
}

// HandleLoginPage serves the login form.
//
// HTTP: GET /login?next=/cards/add
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "")
}

// HandleLocalLogin checks the admin password and starts a session.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLocalLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	result, err := h.auths.LoginLocal(r.Context(), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			h.renderLogin(w, r, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		h.logger.Error("local login", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, nextPath(r), http.StatusSeeOther)
}

// HandleGitHubLogin starts the OAuth flow by redirecting to GitHub. The
// random state lands in a short-lived cookie and is checked on callback.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: state check, code
// exchange, user upsert, session cookie.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.auths.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie. The token itself stays valid
// until expiry; without the cookie the browser cannot send it.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	h.renderer.render(w, r, "login.html", status, map[string]any{
		"Title":        "Log in - FlashDeck",
		"OAuthEnabled": h.github != nil,
		"Next":         nextPath(r),
		"Error":        errMsg,
	})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// nextPath returns a safe post-login redirect target. Only same-site
// absolute paths are accepted; anything else falls back to the home page.
func nextPath(r *http.Request) string {
	next := r.FormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
