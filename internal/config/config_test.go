package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/progression"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "elemental.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "elemental.db", cfg.DatabasePath)
	assert.Equal(t, 90*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, 30, cfg.MaxAIActions)
	assert.Equal(t, 1.0, cfg.AIThinkScale)
	assert.Equal(t, progression.MaterialsLost, cfg.FailurePolicy)
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	p := writeFile(t, `
server:
  address: ":9000"
match:
  turn_timeout: 45s
  queue_size: 4
fusion:
  failure_policy: half_refund
  seed: 99
`)
	t.Setenv("ELEMENTAL_SERVER_ADDRESS", ":7000")
	t.Setenv("ELEMENTAL_AI_THINK_SCALE", "0")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ServerAddress, "env wins over file")
	assert.Equal(t, 45*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 4, cfg.QueueSize)
	assert.Equal(t, 0.0, cfg.AIThinkScale)
	assert.Equal(t, progression.HalfRefund, cfg.FailurePolicy)
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"policy":     "fusion:\n  failure_policy: keep_all\n",
		"queue":      "match:\n  queue_size: 0\n",
		"think":      "ai:\n  think_scale: -1\n",
		"ai actions": "match:\n  max_ai_actions: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
