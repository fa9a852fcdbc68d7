package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/auth"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
)

// LocalAdminID is the token subject used by the password login, which has
// no user record behind it.
const LocalAdminID = "local-admin"

// AuthService gates card authoring. Two ways in: the local admin password
// (a single bcrypt hash from config) and GitHub OAuth restricted to an
// allowlist of logins.
type AuthService struct {
	users             repository.UserRepository
	tokens            *auth.TokenService
	passwords         *auth.PasswordService
	adminPasswordHash string
	adminLogins       map[string]struct{}
	logger            *slog.Logger
}

// NewAuthService creates an AuthService. adminPasswordHash may be empty,
// which disables the password login; adminLogins may be empty, which
// makes every OAuth sign-in a non-admin.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	adminPasswordHash string,
	adminLogins []string,
	logger *slog.Logger,
) *AuthService {
	allowed := make(map[string]struct{}, len(adminLogins))
	for _, login := range adminLogins {
		allowed[login] = struct{}{}
	}
	return &AuthService{
		users:             users,
		tokens:            tokens,
		passwords:         passwords,
		adminPasswordHash: adminPasswordHash,
		adminLogins:       allowed,
		logger:            logger,
	}
}

// AuthResult bundles the authenticated identity with the issued session
// token so the handler can set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginLocal verifies the admin password and issues a session token.
// A wrong password and a disabled password login both come back as
// ErrForbidden so the login form shows the same message for either.
func (s *AuthService) LoginLocal(ctx context.Context, password string) (*AuthResult, error) {
	if s.adminPasswordHash == "" {
		return nil, apperror.Forbidden("password login is not configured")
	}
	if err := s.passwords.Verify(s.adminPasswordHash, password); err != nil {
		s.logger.Warn("failed admin password login")
		return nil, apperror.Forbidden("invalid credentials")
	}

	token, err := s.tokens.Generate(LocalAdminID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating admin token: %w", err)
	}

	s.logger.Info("admin logged in with password")
	return &AuthResult{Token: token}, nil
}

// LoginOrRegisterGitHub completes the OAuth callback: the GitHub profile
// is upserted keyed on its stable numeric ID, then a session token is
// issued for the internal user ID. Any GitHub user may sign in; only
// allowlisted logins pass IsAdmin afterwards.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
		slog.Bool("admin", s.isAllowlisted(user.Login)),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// IsAdmin reports whether the session identity may author cards. It
// satisfies auth.AdminChecker for the admin route middleware.
func (s *AuthService) IsAdmin(ctx context.Context, userID string) bool {
	if userID == LocalAdminID {
		return s.adminPasswordHash != ""
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false
	}
	return s.isAllowlisted(user.Login)
}

func (s *AuthService) isAllowlisted(login string) bool {
	_, ok := s.adminLogins[login]
	return ok
}

// GetUserByID returns the user behind a session. The local admin identity
// has no record and comes back as a synthetic user.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	if id == LocalAdminID {
		return &model.User{ID: LocalAdminID, Login: "admin"}, nil
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken validates a session token and returns the userID inside.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
