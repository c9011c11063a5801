package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, "|", cfg.ReplacerOpen)
	assert.Equal(t, "|", cfg.ReplacerClose)
	assert.Equal(t, 50, cfg.MaxInterfaces)
	assert.Equal(t, []int{50001, 50013, 10008}, cfg.IgnoredErrorCodes)
	assert.Equal(t, 4, cfg.SendWorkers)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AllowBots)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("BOT_PREFIX", "?")
	t.Setenv("IGNORED_ERROR_CODES", "1,2")
	t.Setenv("ALLOW_BOTS", "true")
	t.Setenv("MAX_INTERFACES", "9")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, []int{1, 2}, cfg.IgnoredErrorCodes)
	assert.True(t, cfg.AllowBots)
	assert.Equal(t, 9, cfg.MaxInterfaces)
}

func TestParseInvalid(t *testing.T) {
	t.Setenv("MAX_INTERFACES", "many")
	_, err := Parse()
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OWNER_ID=42\n"), 0644))
	t.Setenv("OWNER_ID", "")
	require.NoError(t, os.Unsetenv("OWNER_ID"))

	cfg, loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "42", cfg.OwnerID)

	_, loaded, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestRequireToken(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).RequireToken(), ErrNoToken)
	assert.NoError(t, (&Config{DiscordToken: "x"}).RequireToken())
}
