package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsMock(t *testing.T) {
	s := Default()
	assert.Equal(t, ModeMock, s.ToolMode)
	assert.Equal(t, ProviderNone, s.LLMProvider)
	assert.False(t, s.Live())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "athir", s.AppName)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tool_mode: live\nredis_url: redis://cache:6379/0\n"), 0o644))

	t.Setenv("ATHIR_REDIS_URL", "redis://override:6379/1")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeLive, s.ToolMode)
	// Environment wins over the file.
	assert.Equal(t, "redis://override:6379/1", s.RedisURL)
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tool_mode: sometimes\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tool_mode")
}

func TestLoadRejectsInvalidProvider(t *testing.T) {
	t.Setenv("ATHIR_LLM_PROVIDER", "bard")
	_, err := Load("")
	require.Error(t, err)
}
