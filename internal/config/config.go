package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv points at the YAML file when --config is not given.
const PathEnv = "ROUTINEPET_CONFIG"

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	DB      DBConfig      `yaml:"db" json:"db"`
	Ollama  OllamaConfig  `yaml:"ollama" json:"ollama"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Rewards RewardsConfig `yaml:"rewards" json:"rewards"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type DBConfig struct {
	// Path is resolved by storage.ResolveDBPath when empty.
	Path string `yaml:"path" json:"path"`
}

type OllamaConfig struct {
	URL     string        `yaml:"url" json:"url"`
	Model   string        `yaml:"model" json:"model"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	RPS     float64       `yaml:"rps" json:"rps"`
	Burst   int           `yaml:"burst" json:"burst"`
}

type AdminConfig struct {
	// Token guards /admin routes. Empty disables the check.
	Token string `yaml:"token" json:"-"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

type RewardsConfig struct {
	XP            map[string]int `yaml:"xp" json:"xp"`
	BaseThreshold int            `yaml:"base_threshold" json:"base_threshold"`
	// ThresholdStep is a pointer so an explicit 0 (flat curve) survives defaults.
	ThresholdStep *int `yaml:"threshold_step" json:"threshold_step"`
}

func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = "127.0.0.1:8000"
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 10 * time.Second
	}
	if s.WriteTimeout == 0 {
		// Coach calls can take as long as the Ollama timeout.
		s.WriteTimeout = 30 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 5 * time.Second
	}
}

func (o *OllamaConfig) ApplyDefaults() {
	if o.URL == "" {
		o.URL = "http://localhost:11434"
	}
	if o.Model == "" {
		o.Model = "mistral:7b-instruct"
	}
	if o.Timeout == 0 {
		o.Timeout = 15 * time.Second
	}
	if o.RPS == 0 {
		o.RPS = 2
	}
	if o.Burst == 0 {
		o.Burst = 4
	}
}

func (a *AdminConfig) ApplyDefaults() {
	if a.Token == "" {
		a.Token = "dev-admin-token"
	}
}

func (l *LogConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (r *RewardsConfig) ApplyDefaults() {
	if r.XP == nil {
		r.XP = map[string]int{"done": 10, "late": 6, "partial": 5, "miss": 0}
	}
	if r.BaseThreshold == 0 {
		r.BaseThreshold = 100
	}
	if r.ThresholdStep == nil {
		step := 50
		r.ThresholdStep = &step
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Ollama.ApplyDefaults()
	c.Admin.ApplyDefaults()
	c.Log.ApplyDefaults()
	c.Rewards.ApplyDefaults()
}

// Load reads the YAML file at path, fills defaults, then applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.ApplyDefaults()
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Rewards.BaseThreshold < 1 {
		return fmt.Errorf("rewards.base_threshold must be >= 1")
	}
	if c.Rewards.ThresholdStep != nil && *c.Rewards.ThresholdStep < 0 {
		return fmt.Errorf("rewards.threshold_step must be >= 0")
	}
	for status, xp := range c.Rewards.XP {
		if xp < 0 {
			return fmt.Errorf("rewards.xp.%s must be >= 0", status)
		}
	}
	if c.Ollama.Timeout < 0 {
		return fmt.Errorf("ollama.timeout must be >= 0")
	}
	return nil
}
