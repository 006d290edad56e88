package config

import (
	"fmt"
	"strconv"
	"time"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides file values from the environment. Legacy short names
// such as OLLAMA_URL and ADMIN_TOKEN still work; the ROUTINEPET_ name wins
// when both are set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
			}
		}
	}
	str(&c.Server.Addr, "ROUTINEPET_ADDR")
	str(&c.DB.Path, "DB_PATH", "ROUTINEPET_DB")
	str(&c.Ollama.URL, "OLLAMA_URL", "ROUTINEPET_OLLAMA_URL")
	str(&c.Ollama.Model, "OLLAMA_MODEL", "ROUTINEPET_OLLAMA_MODEL")
	str(&c.Admin.Token, "ADMIN_TOKEN", "ROUTINEPET_ADMIN_TOKEN")
	str(&c.Log.Level, "ROUTINEPET_LOG_LEVEL")
	str(&c.Log.File, "ROUTINEPET_LOG_FILE")

	if v, ok := lookup("ROUTINEPET_OLLAMA_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROUTINEPET_OLLAMA_TIMEOUT: %w", err)
		}
		c.Ollama.Timeout = d
	}
	if v, ok := lookup("ROUTINEPET_OLLAMA_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ROUTINEPET_OLLAMA_RPS: %w", err)
		}
		c.Ollama.RPS = f
	}
	return nil
}
