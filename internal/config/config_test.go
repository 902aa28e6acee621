package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, "config")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
}

func TestInit_DefaultsWithoutFile(t *testing.T) {
	c, err := Init(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "5050", c.Server.Port)
	assert.Equal(t, 12*time.Hour, c.Server.AdminTokenTTL)
	assert.Equal(t, "v1", c.Cache.Version)
	assert.Equal(t, 16*time.Millisecond, c.Performance.FrameInterval)
	assert.Equal(t, "data/local.db", c.Storage.Path)
	assert.Same(t, c, Get())
}

func TestInit_FileAndEnvironment(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
server:
  port: "8080"
  admin_token_ttl: 30m
cache:
  version: v7
  manifest: ["/", "/about"]
`)
	t.Setenv("AROGYAM_DATABASE_HOST", "postgres.internal")

	c, err := Init(root, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, 30*time.Minute, c.Server.AdminTokenTTL)
	assert.Equal(t, "v7", c.Cache.Version)
	assert.Equal(t, []string{"/", "/about"}, c.Cache.Manifest)
	assert.Equal(t, "postgres.internal", c.Database.Host)
}

func TestInit_RejectsShortSessionSecret(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "server:\n  session_secret: short\n")

	_, err := Init(root, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
}

func TestInit_MalformedFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "server: [unterminated\n")

	_, err := Init(root, zap.NewNop())
	require.Error(t, err)
}

func TestInit_ReloadsWhenFileChanges(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "server:\n  port: \"8080\"\n  admin_token_ttl: 1h\n")

	c, err := Init(root, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "8080", c.Server.Port)

	writeConfig(t, root, "server:\n  port: \"9090\"\n  admin_token_ttl: 20m\n")

	assert.Eventually(t, func() bool {
		return Get().Server.AdminTokenTTL == 20*time.Minute
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "9090", Get().Server.Port)
	assert.Equal(t, "8080", c.Server.Port, "a loaded snapshot is never mutated")
}

func TestInit_BadReloadKeepsLastGoodConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "server:\n  admin_token_ttl: 1h\n")

	_, err := Init(root, zap.NewNop())
	require.NoError(t, err)

	writeConfig(t, root, "server:\n  session_secret: short\n  admin_token_ttl: 5m\n")
	time.Sleep(4 * reloadDebounce)
	assert.Equal(t, time.Hour, Get().Server.AdminTokenTTL)

	writeConfig(t, root, "server:\n  admin_token_ttl: 2h\n")

	assert.Eventually(t, func() bool {
		return Get().Server.AdminTokenTTL == 2*time.Hour
	}, 5*time.Second, 20*time.Millisecond)
}
