package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "127.0.0.1:8000", c.Server.Addr)
	assert.Equal(t, "http://localhost:11434", c.Ollama.URL)
	assert.Equal(t, "mistral:7b-instruct", c.Ollama.Model)
	assert.Equal(t, 15*time.Second, c.Ollama.Timeout)
	assert.Equal(t, "dev-admin-token", c.Admin.Token)
	assert.Equal(t, 10, c.Rewards.XP["done"])
	assert.Equal(t, 100, c.Rewards.BaseThreshold)
	require.NotNil(t, c.Rewards.ThresholdStep)
	assert.Equal(t, 50, *c.Rewards.ThresholdStep)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routinepet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  write_timeout: 45s
ollama:
  model: llama3
  timeout: 3s
rewards:
  xp:
    done: 20
  threshold_step: 25
log:
  level: debug
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, 45*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "llama3", c.Ollama.Model)
	assert.Equal(t, 3*time.Second, c.Ollama.Timeout)
	assert.Equal(t, map[string]int{"done": 20}, c.Rewards.XP)
	require.NotNil(t, c.Rewards.ThresholdStep)
	assert.Equal(t, 25, *c.Rewards.ThresholdStep)
	assert.Equal(t, 100, c.Rewards.BaseThreshold)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OLLAMA_URL":                "http://gpu:11434",
		"ADMIN_TOKEN":               "short-name",
		"ROUTINEPET_ADMIN_TOKEN":    "long-name",
		"DB_PATH":                   "/tmp/pet.db",
		"ROUTINEPET_OLLAMA_TIMEOUT": "2s",
	}
	c := Default()
	require.NoError(t, c.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, "http://gpu:11434", c.Ollama.URL)
	assert.Equal(t, "long-name", c.Admin.Token)
	assert.Equal(t, "/tmp/pet.db", c.DB.Path)
	assert.Equal(t, 2*time.Second, c.Ollama.Timeout)

	c = Default()
	require.NoError(t, c.ApplyEnv(noEnv))
	assert.Equal(t, Default(), c)

	err := c.ApplyEnv(func(k string) (string, bool) {
		if k == "ROUTINEPET_OLLAMA_RPS" {
			return "fast", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Rewards.XP["done"] = -1
	assert.Error(t, c.Validate())

	c = Default()
	c.Rewards.BaseThreshold = -5
	assert.Error(t, c.Validate())

	c = Default()
	step := -1
	c.Rewards.ThresholdStep = &step
	assert.Error(t, c.Validate())
}

func TestLoadKeepsFlatThresholdStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rewards:\n  threshold_step: 0\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, c.Rewards.ThresholdStep)
	assert.Equal(t, 0, *c.Rewards.ThresholdStep)
}
