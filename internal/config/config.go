// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. The file carries the stable,
// checked-in settings; env vars carry per-deployment secrets (JWT secret,
// OAuth credentials) and overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned when a config value is out of bounds.
var ErrInvalidValue = errors.New("invalid config value")

// Config contains everything the server needs to start.
type Config struct {
	Port        int    `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	TemplateDir string `yaml:"template_dir"`
	StaticDir   string `yaml:"static_dir"`

	// JWTSecret signs admin session tokens. If empty, the add-card form
	// and login routes are not registered; the site is read-only.
	JWTSecret string `yaml:"jwt_secret"`

	// AdminPasswordHash is a bcrypt hash for the local admin login.
	AdminPasswordHash string `yaml:"admin_password_hash"`

	// AdminLogins lists GitHub usernames allowed to administer the site
	// via the OAuth sign-in.
	AdminLogins []string `yaml:"admin_logins"`

	GitHubClientID     string `yaml:"github_client_id"`
	GitHubClientSecret string `yaml:"github_client_secret"`
	GitHubCallbackURL  string `yaml:"github_callback_url"`
}

// Default returns the configuration used when no file and no env vars are
// present.
func Default() Config {
	return Config{
		Port:        8080,
		DBPath:      "data/flashdeck.db",
		TemplateDir: "web/templates",
		StaticDir:   "web/static",
	}
}

// Load reads the YAML file at path (missing file is fine: defaults apply)
// and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults + env
		case err != nil:
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set.
func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q is not a number", ErrInvalidValue, v)
		}
		c.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		c.AdminPasswordHash = v
	}
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		c.GitHubClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		c.GitHubClientSecret = v
	}
	if v := os.Getenv("GITHUB_CALLBACK_URL"); v != "" {
		c.GitHubCallbackURL = v
	}
	return nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrInvalidValue, c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidValue)
	}
	return nil
}

// AuthEnabled reports whether admin authentication can be set up.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// OAuthEnabled reports whether the GitHub sign-in routes should be
// registered.
func (c *Config) OAuthEnabled() bool {
	return c.AuthEnabled() && c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// IsAdminLogin reports whether the given GitHub login is on the admin
// allowlist.
func (c *Config) IsAdminLogin(login string) bool {
	for _, l := range c.AdminLogins {
		if l == login {
			return true
		}
	}
	return false
}
