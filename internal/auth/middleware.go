package auth

import (
	"context"
	"net/http"
)

// contextKey keeps this package's context values private; no other package
// can construct a key of this type.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the session cookie holding the JWT.
const CookieName = "token"

// AdminChecker reports whether the given userID is allowed to author
// cards. The service layer implements it against the admin allowlist.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// RequireAuth blocks requests that do not carry a valid session cookie.
// On success the userID lands in the request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin additionally checks the authenticated user against the
// admin allowlist. Logged-in non-admins get 403 rather than a login
// redirect, so they are not bounced in a loop.
func RequireAdmin(tokens *TokenService, admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				redirectToLogin(w, r)
				return
			}
			if !admins.IsAdmin(r.Context(), userID) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user identity when a valid cookie is present
// but never blocks the request. Page handlers use it to switch the menu
// between "log in" and "log out".
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or ("", false)
// for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
}
