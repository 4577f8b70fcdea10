// Package config loads notelog configuration from YAML files, a .env file and
// NOTELOG_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/logging"
)

// CurrentVersion is the config schema version this build understands.
const CurrentVersion = 1

// Project config file names, in lookup order.
const (
	ProjectConfigFile    = ".notelog.yaml"
	projectConfigFileAlt = ".notelog.yml"
	dotEnvFile           = ".env"
)

// Environment variables that override file configuration.
const (
	EnvLogLevel    = "NOTELOG_LOG_LEVEL"
	EnvLogFile     = "NOTELOG_LOG_FILE"
	EnvLogFormat   = "NOTELOG_LOG_FORMAT"
	EnvLogStderr   = "NOTELOG_LOG_STDERR"
	EnvSummaryFile = "NOTELOG_SUMMARY_FILE"
)

// Config represents the complete notelog configuration.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// SummaryFile is the summary file truncated by `notelog setup` when no
	// argument is given.
	SummaryFile string `yaml:"summary_file" json:"summary_file"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig configures the log sink.
type LoggingConfig struct {
	// Level is the minimum level. Setup never goes below info.
	Level string `yaml:"level" json:"level"`
	// File is the log file path (default: logfile.log in the working directory).
	File string `yaml:"file" json:"file"`
	// Format is text or json.
	Format string `yaml:"format" json:"format"`
	// Stderr copies every record to stderr as well.
	Stderr bool `yaml:"stderr" json:"stderr"`
	// MaxSizeMB rotates the log file past this size. 0 disables rotation.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`
	// MaxFiles is the number of rotated files kept.
	MaxFiles int `yaml:"max_files" json:"max_files"`
	// SyncWrites fsyncs after every record.
	SyncWrites bool `yaml:"sync_writes" json:"sync_writes"`
	// Components sets per-component minimum levels, e.g. openai: warn.
	Components map[string]string `yaml:"components,omitempty" json:"components,omitempty"`
}

// NewConfig creates a new Config with defaults matching logging.DefaultConfig.
func NewConfig() *Config {
	defaults := logging.DefaultConfig()
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Level:      defaults.Level,
			File:       defaults.FilePath,
			Format:     defaults.Format,
			Stderr:     defaults.WriteToStderr,
			MaxSizeMB:  defaults.MaxSizeMB,
			MaxFiles:   defaults.MaxFiles,
			SyncWrites: defaults.SyncWrites,
			// Chatty client libraries stay at warn unless configured otherwise.
			Components: map[string]string{
				"openai":    "warn",
				"pdf2image": "warn",
			},
		},
	}
}

// LogConfig converts the logging section into a logging.Config.
func (c *Config) LogConfig() logging.Config {
	components := make(map[string]string, len(c.Logging.Components))
	for k, v := range c.Logging.Components {
		components[k] = v
	}
	return logging.Config{
		Level:         c.Logging.Level,
		FilePath:      c.Logging.File,
		Format:        c.Logging.Format,
		MaxSizeMB:     c.Logging.MaxSizeMB,
		MaxFiles:      c.Logging.MaxFiles,
		WriteToStderr: c.Logging.Stderr,
		SyncWrites:    c.Logging.SyncWrites,
		Components:    components,
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/notelog/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/notelog/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "notelog", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "notelog", "config.yaml")
	}
	return filepath.Join(home, ".config", "notelog", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if there is none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigFile, projectConfigFileAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/notelog/config.yaml)
//  3. Project config (.notelog.yaml in dir)
//  4. .env in dir (never overrides variables already set)
//  5. Environment variables (NOTELOG_*)
func Load(dir string) (*Config, error) {
	return LoadFile(dir, "")
}

// LoadFile is Load with an explicit config file used in place of the project
// config. An explicit file that does not exist is an error.
func LoadFile(dir, explicit string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if explicit != "" {
		if !fileExists(explicit) {
			return nil, nlerrors.New(nlerrors.ErrCodeConfigNotFound, "config file not found", nil).
				WithDetail("path", explicit)
		}
		if err := cfg.loadYAML(explicit); err != nil {
			return nil, err
		}
	} else if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	dotEnv, err := readDotEnv(filepath.Join(dir, dotEnvFile))
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotEnv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadYAML decodes path over c. Keys absent from the file keep their current value.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nlerrors.New(nlerrors.ErrCodeConfigInvalid, "failed to read config file", err).
			WithDetail("path", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nlerrors.New(nlerrors.ErrCodeConfigInvalid, "failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax, or run 'notelog config init --force' to start over")
	}
	return nil
}

// readDotEnv returns the variables defined in path, or nil if it does not exist.
func readDotEnv(path string) (map[string]string, error) {
	if !fileExists(path) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, nlerrors.New(nlerrors.ErrCodeConfigInvalid, "failed to parse .env file", err).
			WithDetail("path", path)
	}
	return vars, nil
}

// applyEnvOverrides applies NOTELOG_* overrides looked up through getenv.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := getenv(EnvLogStderr); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Stderr = b
		}
	}
	if v := getenv(EnvSummaryFile); v != "" {
		c.SummaryFile = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return invalid("version", fmt.Sprintf("unsupported config version %d (expected %d)", c.Version, CurrentVersion))
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return invalid("logging.format", fmt.Sprintf("logging.format must be 'text' or 'json', got %q", c.Logging.Format))
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		return invalid("logging.file", "logging.file must not be empty")
	}
	if c.Logging.MaxSizeMB < 0 {
		return invalid("logging.max_size_mb", fmt.Sprintf("logging.max_size_mb must be non-negative, got %d", c.Logging.MaxSizeMB))
	}
	if c.Logging.MaxFiles < 1 {
		return invalid("logging.max_files", fmt.Sprintf("logging.max_files must be at least 1, got %d", c.Logging.MaxFiles))
	}
	for name, level := range c.Logging.Components {
		if strings.TrimSpace(name) == "" {
			return invalid("logging.components", "component names must not be empty")
		}
		if !logging.ValidLevel(level) {
			return invalid("logging.components."+name, fmt.Sprintf("invalid level %q for component %s", level, name))
		}
	}
	return nil
}

func invalid(field, msg string) error {
	return nlerrors.New(nlerrors.ErrCodeConfigInvalid, msg, nil).WithDetail("field", field)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nlerrors.New(nlerrors.ErrCodeInternal, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nlerrors.New(nlerrors.ErrCodeConfigWrite, "failed to write config file", err).
			WithDetail("path", path)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
