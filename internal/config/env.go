package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"backoffice/internal/utils"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE"`

	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	RequestIDHeader string        `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	SearchDebounce  time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`
	DefaultPageSize int           `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int           `env:"MAX_PAGE_SIZE" envDefault:"100"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173"`
	AuthCookie         string `env:"AUTH_COOKIE" envDefault:"authToken"`
	AdminRoles         string `env:"ADMIN_ROLES" envDefault:"admin"`
	JWTSecret          string `env:"JWT_SECRET"`

	AuditDSN string `env:"AUDIT_DSN"`

	ExportCurrency string `env:"EXPORT_CURRENCY" envDefault:"SAR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadEnv reads .env files when present and parses the environment.
func LoadEnv() (Env, error) {
	files := make([]string, 0, 2)
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Env{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, e.Validate()
}

// Validate checks the parsed values for obvious misconfiguration.
func (e Env) Validate() error {
	if strings.TrimSpace(e.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if e.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", e.DefaultPageSize)
	}
	if e.MaxPageSize < e.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must not be below DEFAULT_PAGE_SIZE (%d)", e.MaxPageSize, e.DefaultPageSize)
	}
	if e.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	if strings.TrimSpace(e.AuthCookie) == "" {
		return fmt.Errorf("AUTH_COOKIE is required")
	}
	return nil
}

func (e Env) AllowedOrigins() []string {
	out := []string{}
	for _, o := range strings.Split(e.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// JWTKey is the HMAC key tokens are verified with, nil when unset.
func (e Env) JWTKey() []byte {
	if strings.TrimSpace(e.JWTSecret) == "" {
		return nil
	}
	return []byte(e.JWTSecret)
}

func (e Env) AdminRoleList() []string {
	return utils.SplitList(e.AdminRoles)
}
