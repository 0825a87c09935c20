package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/habits/internal/store/jsonstore"
)

// Config holds the settings read from the optional YAML file, the
// environment and the command line, in increasing precedence.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	File      string `yaml:"file"`
	Theme     string `yaml:"theme"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Watch     *bool  `yaml:"watch,omitempty"`
}

const (
	EnvDataDir   = "HABITS_DATA_DIR"
	EnvFile      = "HABITS_FILE"
	EnvTheme     = "HABITS_THEME"
	EnvLogLevel  = "HABITS_LOG_LEVEL"
	EnvLogFormat = "HABITS_LOG_FORMAT"
	EnvWatch     = "HABITS_WATCH"
)

var (
	themes     = map[string]bool{"classic": true, "neon": true, "mono": true}
	logFormats = map[string]bool{"text": true, "json": true}
	logLevels  = map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
)

// DefaultPath is <user config dir>/habits/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "habits", "config.yaml"), nil
}

// Load reads the configuration file at path. An empty path selects
// DefaultPath, which may be absent; an explicit path must exist.
// A .env file in the working directory is loaded first without
// overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("configuration file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvFile); v != "" {
		c.File = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Theme = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvWatch); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWatch, err)
		}
		c.Watch = &b
	}
	return nil
}

// Finalize fills defaults, expands "~" and validates. Call it again after
// applying command line overrides.
func (c *Config) Finalize() error {
	if c.DataDir == "" {
		dir, err := jsonstore.DefaultDir()
		if err != nil {
			return err
		}
		c.DataDir = dir
	}
	dir, err := expandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dir
	if c.File == "" {
		c.File = jsonstore.DataFileName
	}
	if c.Theme == "" {
		c.Theme = "classic"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Watch == nil {
		on := true
		c.Watch = &on
	}

	c.Theme = strings.ToLower(c.Theme)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if !themes[c.Theme] {
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if !logFormats[c.LogFormat] {
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if filepath.Base(c.File) != c.File {
		return fmt.Errorf("file must be a bare file name, got %q", c.File)
	}
	return nil
}

// DataPath is the full path of the habits file.
func (c *Config) DataPath() string { return filepath.Join(c.DataDir, c.File) }

// LogPath is where the interactive UI writes its log.
func (c *Config) LogPath() string { return filepath.Join(c.DataDir, "habits.log") }

// SlogLevel maps LogLevel to a slog level; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// WatchEnabled reports whether the UI should follow external file changes.
func (c *Config) WatchEnabled() bool { return c.Watch == nil || *c.Watch }

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return b, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
