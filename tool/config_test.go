package tool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/claimdesk/types"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backendURL: http://claims.internal:9000/\nmodel: o3\nsessionTTL: 5\n"), 0o644))
	t.Setenv("CLAIMDESK_MODEL", "gpt-4.1")
	t.Setenv("CLAIMDESK_USD_TO_THB_RATE", "36.5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://claims.internal:9000", cfg.BackendURL, "trailing slash trimmed")
	assert.Equal(t, "gpt-4.1", cfg.Model, "env wins over file")
	assert.Equal(t, 36.5, cfg.USDToTHBRate)
	assert.Equal(t, 5*time.Minute, SessionTTLDuration(&cfg))
	assert.Equal(t, "/verify-date/", cfg.VerifyPath, "missing keys keep defaults")

	ApplyFlagOverrides(&cfg, types.Config{UseModel: "o1", UsePort: 9999, UseAllowRemote: true})
	assert.Equal(t, "o1", cfg.Model, "flags win over env")
	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.AllowRemote)
	assert.Equal(t, "o1", GetCurrentConfig().Model)
}

func TestLoadConfigBadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CLAIMDESK_PORT", "not-a-number")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsDirectory(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestRequestTimeoutDuration(t *testing.T) {
	cfg := DefaultConfig()
	assert.Zero(t, RequestTimeoutDuration(&cfg))
	cfg.RequestTimeout = 30
	assert.Equal(t, 30*time.Second, RequestTimeoutDuration(&cfg))
}
