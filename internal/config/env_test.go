package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	e, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", e.AppAddr)
	assert.Equal(t, 500*time.Millisecond, e.SearchDebounce)
	assert.Equal(t, 10, e.DefaultPageSize)
	assert.Equal(t, "authToken", e.AuthCookie)
	assert.Equal(t, []string{"admin"}, e.AdminRoleList())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("ADMIN_ROLES", "Admin, super_admin")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, ")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, e.SearchDebounce)
	assert.Equal(t, []string{"admin", "super_admin"}, e.AdminRoleList())
	assert.Equal(t, []string{"https://admin.example.com"}, e.AllowedOrigins())
}

func TestValidateRejectsInconsistentPageSizes(t *testing.T) {
	e := Env{APIBaseURL: "x", DefaultPageSize: 50, MaxPageSize: 10, AuthCookie: "authToken"}
	assert.Error(t, e.Validate())
}
