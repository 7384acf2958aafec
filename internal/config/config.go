// Package config loads the portal's YAML settings, an optional .env file and
// CIVIC_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sadopc/civic/internal/flow"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath  string        `yaml:"db_path"`
	Logging LoggingConfig `yaml:"logging"`
	Delays  DelaysConfig  `yaml:"delays"`
	TopUp   TopUpConfig   `yaml:"top_up"`
	Login   LoginConfig   `yaml:"login"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	// File receives log output. Empty disables logging.
	File string `yaml:"file"`
}

// DelaysConfig holds duration strings such as "1.5s".
type DelaysConfig struct {
	Loading    string `yaml:"loading"`
	SendCode   string `yaml:"send_code"`
	VerifyCode string `yaml:"verify_code"`
	PayTaxes   string `yaml:"pay_taxes"`
	TopUp      string `yaml:"top_up"`
	PayUtility string `yaml:"pay_utility"`
	AutoPay    string `yaml:"auto_pay"`
}

type TopUpConfig struct {
	Presets []int `yaml:"presets"`
	Default int   `yaml:"default"`
}

type LoginConfig struct {
	DefaultEmail  string `yaml:"default_email"`
	MinCodeLength int    `yaml:"min_code_length"`
}

const defaultLoading = time.Second

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	d := flow.DefaultDelays()
	cfg := &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Delays: DelaysConfig{
			Loading:    defaultLoading.String(),
			SendCode:   d[flow.SendCode].String(),
			VerifyCode: d[flow.VerifyCode].String(),
			PayTaxes:   d[flow.PayTaxes].String(),
			TopUp:      d[flow.TopUp].String(),
			PayUtility: d[flow.PayUtility].String(),
			AutoPay:    d[flow.ToggleAutoPay].String(),
		},
		TopUp: TopUpConfig{
			Presets: []int{50, 100, 200, 500},
			Default: 100,
		},
		Login: LoginConfig{
			MinCodeLength: 4,
		},
	}
	if p, err := DefaultLogPath(); err == nil {
		cfg.Logging.File = p
	}
	return cfg
}

// DefaultPath returns ~/.config/civic/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "civic", "config.yaml"), nil
}

// DefaultLogPath returns ~/.config/civic/civic.log
func DefaultLogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "civic", "civic.log"), nil
}

// Load reads the YAML file at path. A missing file yields defaults. A .env
// file in the working directory is loaded before environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	_ = godotenv.Load(".env")
	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.DBPath = getString("CIVIC_DB_PATH", c.DBPath)
	c.Logging.Level = getString("CIVIC_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getString("CIVIC_LOG_FILE", c.Logging.File)
	c.Logging.Encoding = getString("CIVIC_LOG_ENCODING", c.Logging.Encoding)
}

// normalize replaces values the portal cannot use with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()

	presets := c.TopUp.Presets[:0:0]
	for _, p := range c.TopUp.Presets {
		if p > 0 {
			presets = append(presets, p)
		}
	}
	if len(presets) == 0 {
		presets = def.TopUp.Presets
	}
	c.TopUp.Presets = presets
	if c.TopUp.Default <= 0 {
		c.TopUp.Default = def.TopUp.Default
	}
	if c.Login.MinCodeLength <= 0 {
		c.Login.MinCodeLength = def.Login.MinCodeLength
	}
}

// LoadingDelay is how long the startup loading screen stays up.
func (c *Config) LoadingDelay() time.Duration {
	return parseDuration(c.Delays.Loading, defaultLoading)
}

// FlowDelays maps each request kind to its configured latency.
func (c *Config) FlowDelays() map[flow.Kind]time.Duration {
	d := flow.DefaultDelays()
	return map[flow.Kind]time.Duration{
		flow.SendCode:      parseDuration(c.Delays.SendCode, d[flow.SendCode]),
		flow.VerifyCode:    parseDuration(c.Delays.VerifyCode, d[flow.VerifyCode]),
		flow.PayTaxes:      parseDuration(c.Delays.PayTaxes, d[flow.PayTaxes]),
		flow.TopUp:         parseDuration(c.Delays.TopUp, d[flow.TopUp]),
		flow.PayUtility:    parseDuration(c.Delays.PayUtility, d[flow.PayUtility]),
		flow.ToggleAutoPay: parseDuration(c.Delays.AutoPay, d[flow.ToggleAutoPay]),
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
