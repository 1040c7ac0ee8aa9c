// ABOUTME: Pulse configuration: JSON file, .env loading, and PULSE_* environment overrides.
// ABOUTME: Resolves data paths and produces the engine options used by the batch jobs.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/harperreed/pulse/internal/engine"
	"github.com/harperreed/pulse/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PULSE_"

// Config stores pulse configuration. Zero values mean "use the default".
type Config struct {
	// DataDir is the root directory for pulse.db and the KV mirror.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/pulse.
	DataDir string `json:"data_dir,omitempty"`

	// MirrorDir overrides where the KV mirror lives. Defaults to DataDir/mirror.
	MirrorDir string `json:"mirror_dir,omitempty"`

	Debug bool `json:"debug,omitempty"`

	// Durations use time.ParseDuration syntax ("60m", "8h").
	MaxSleepPause string `json:"max_sleep_pause,omitempty"`
	IdealSleep    string `json:"ideal_sleep,omitempty"`

	// Window sizes are counts of samples.
	SleepWindow  int `json:"sleep_window,omitempty"`
	StressWindow int `json:"stress_window,omitempty"`
	StressPage   int `json:"stress_page,omitempty"`
	HRVWindow    int `json:"hrv_window,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "pulse.db")
}

// GetMirrorDir returns the KV mirror directory.
func (c *Config) GetMirrorDir() string {
	if c.MirrorDir == "" {
		return filepath.Join(c.GetDataDir(), "mirror")
	}
	return ExpandPath(c.MirrorDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite history store in the data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.GetDBPath())
}

// Engine returns the batch job options, falling back to engine defaults for
// anything unset.
func (c *Config) Engine() (engine.Options, error) {
	opts := engine.DefaultOptions()

	if c.MaxSleepPause != "" {
		d, err := time.ParseDuration(c.MaxSleepPause)
		if err != nil {
			return opts, fmt.Errorf("parse max_sleep_pause: %w", err)
		}
		opts.MaxSleepPause = d
	}
	if c.IdealSleep != "" {
		d, err := time.ParseDuration(c.IdealSleep)
		if err != nil {
			return opts, fmt.Errorf("parse ideal_sleep: %w", err)
		}
		opts.IdealSleep = d
	}
	if c.SleepWindow > 0 {
		opts.SleepWindow = c.SleepWindow
	}
	if c.StressWindow > 0 {
		opts.StressWindow = c.StressWindow
	}
	if c.StressPage > 0 {
		opts.StressPage = c.StressPage
	}
	if c.HRVWindow > 0 {
		opts.HRVWindow = c.HRVWindow
	}

	if opts.StressPage <= opts.StressWindow {
		return opts, fmt.Errorf("stress_page (%d) must exceed stress_window (%d)", opts.StressPage, opts.StressWindow)
	}
	return opts, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "pulse", "config.json")
}

// Load reads config from disk, then applies .env and PULSE_* overrides.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(GetConfigPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.MirrorDir = getEnv("MIRROR_DIR", c.MirrorDir)
	c.Debug = getEnvAsBool("DEBUG", c.Debug)
	c.MaxSleepPause = getEnv("MAX_SLEEP_PAUSE", c.MaxSleepPause)
	c.IdealSleep = getEnv("IDEAL_SLEEP", c.IdealSleep)
	c.SleepWindow = getEnvAsInt("SLEEP_WINDOW", c.SleepWindow)
	c.StressWindow = getEnvAsInt("STRESS_WINDOW", c.StressWindow)
	c.StressPage = getEnvAsInt("STRESS_PAGE", c.StressPage)
	c.HRVWindow = getEnvAsInt("HRV_WINDOW", c.HRVWindow)
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
