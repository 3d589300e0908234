package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
auth:
  jwt_secret: "0123456789abcdef-secret"
engine:
  spirit_score_max: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Engine.SpiritScoreMax)
	assert.Equal(t, 0, cfg.Engine.SpiritScoreMin)
	assert.Equal(t, 15, cfg.Engine.MinSessionMinutes)
	assert.Equal(t, 10*time.Minute, cfg.Engine.LeaderboardCacheTTL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.False(t, cfg.Auth.AllowAdminSignup)
}

func TestLoad_AllowAdminSignupFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: \"0123456789abcdef-secret\"\n"), 0o600))
	t.Setenv("YULTIMATE_AUTH_ALLOW_ADMIN_SIGNUP", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Auth.AllowAdminSignup)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: short\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEngineConfig_Validate(t *testing.T) {
	e := DefaultEngineConfig()
	assert.NoError(t, e.Validate())

	e.SpiritScoreMin = 5
	assert.Error(t, e.Validate())

	e = DefaultEngineConfig()
	e.MinSessionMinutes = 0
	assert.Error(t, e.Validate())
}
