package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublic = `
jwt_ttl: 1h
public_url: "http://localhost:8081"
proxy_url: "http://api:8080"
admin_emails: ["Root@A2Z.dev"]
`

const testPrivate = `
jwt_key: "k"
admin_secret: "s"
pg:
  host: localhost
  port: 5432
  user: a2z
  dbname: a2z
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	cfg := MustLoad(writeConfig(t, testPublic, testPrivate))

	assert.Equal(t, time.Hour, cfg.JwtTTL())
	assert.Equal(t, "k", cfg.JwtKey())
	assert.Equal(t, 1000, cfg.Public.ListUsersCap)
	assert.Equal(t, 50, cfg.Public.SystemLogLimit)
	assert.Equal(t, 90*24*time.Hour, cfg.Public.SystemLogRetention)
	assert.Equal(t, "a2z-demo", cfg.Public.DefaultStoreSlug)
	assert.Equal(t, "#4f46e5", cfg.Public.DefaultThemeColor)
	assert.True(t, cfg.IsAdminEmail(" root@a2z.dev "))
	assert.False(t, cfg.IsAdminEmail("other@a2z.dev"))
}

func TestMustLoad_EnvOverride(t *testing.T) {
	dir := writeConfig(t, testPublic, testPrivate)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_SECRET=from-dotenv\n"), 0o600))
	t.Setenv("JWT_KEY", "from-env")
	t.Cleanup(func() { os.Unsetenv("ADMIN_SECRET") })

	cfg := MustLoad(dir)

	assert.Equal(t, "from-env", cfg.JwtKey())
	assert.Equal(t, "from-dotenv", cfg.Private.AdminSecret)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// jwt_key is intentionally missing
	dir := writeConfig(t, testPublic, "admin_secret: s\npg:\n  host: h\n  port: 1\n  user: u\n  dbname: d\n")

	assert.Panics(t, func() { MustLoad(dir) })
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}
