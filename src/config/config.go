package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment represents the runtime environment
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment Environment `mapstructure:"APP_ENV"`

	// Logging
	LogLevel LogLevel `mapstructure:"LOG_LEVEL"`
	LogMode  string   `mapstructure:"LOG_MODE"`
	LogDir   string   `mapstructure:"LOG_DIR"`

	// Arrangement canvas
	SnapThreshold   int     `mapstructure:"SNAP_THRESHOLD"`
	CanvasScale     float64 `mapstructure:"CANVAS_SCALE"`
	MinRenderWidth  float64 `mapstructure:"MIN_RENDER_WIDTH"`
	MinRenderHeight float64 `mapstructure:"MIN_RENDER_HEIGHT"`
	ViewportWidth   float64 `mapstructure:"VIEWPORT_WIDTH"`
	ViewportHeight  float64 `mapstructure:"VIEWPORT_HEIGHT"`

	// Hyprland
	MonitorsConfPath string        `mapstructure:"MONITORS_CONF_PATH"`
	HyprctlTimeout   time.Duration `mapstructure:"HYPRCTL_TIMEOUT"`
	ApplyLive        bool          `mapstructure:"APPLY_LIVE"`

	// Local state
	StateDBPath string `mapstructure:"STATE_DB_PATH"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads configuration from the given .env file and the environment.
// A missing file is not an error.
func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// .env file not found, continue with environment variables only
	}

	// Environment variables override .env file
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LogMode = strings.ToLower(strings.TrimSpace(cfg.LogMode))
	cfg.LogLevel = LogLevel(strings.ToLower(string(cfg.LogLevel)))
	cfg.MonitorsConfPath = expandHome(cfg.MonitorsConfPath)
	cfg.StateDBPath = expandHome(cfg.StateDBPath)
	cfg.LogDir = expandHome(cfg.LogDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}

func defaultValues() map[string]any {
	return map[string]any{
		"APP_ENV":            "development",
		"LOG_LEVEL":          "info",
		"LOG_MODE":           "cli",
		"LOG_DIR":            filepath.Join(stateHome(), "hyprarrange", "log"),
		"SNAP_THRESHOLD":     200,
		"CANVAS_SCALE":       0.15,
		"MIN_RENDER_WIDTH":   120.0,
		"MIN_RENDER_HEIGHT":  80.0,
		"VIEWPORT_WIDTH":     800.0,
		"VIEWPORT_HEIGHT":    600.0,
		"MONITORS_CONF_PATH": "~/.config/hypr/configs/autogen/monitors.conf",
		"HYPRCTL_TIMEOUT":    "5s",
		"APPLY_LIVE":         false,
		"STATE_DB_PATH":      filepath.Join(stateHome(), "hyprarrange", "state.db"),
	}
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Environment:      Development,
		LogLevel:         LogLevelInfo,
		LogMode:          "cli",
		LogDir:           filepath.Join(stateHome(), "hyprarrange", "log"),
		SnapThreshold:    200,
		CanvasScale:      0.15,
		MinRenderWidth:   120,
		MinRenderHeight:  80,
		ViewportWidth:    800,
		ViewportHeight:   600,
		MonitorsConfPath: filepath.Join(home, ".config", "hypr", "configs", "autogen", "monitors.conf"),
		HyprctlTimeout:   5 * time.Second,
		StateDBPath:      filepath.Join(stateHome(), "hyprarrange", "state.db"),
	}
}

// stateHome follows XDG_STATE_HOME, falling back to ~/.local/state
func stateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Production, Test:
	default:
		return fmt.Errorf("invalid environment: %s (must be development, production, or test)", c.Environment)
	}

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.LogMode {
	case "cli", "file", "journal":
	default:
		return fmt.Errorf("invalid log mode: %s (must be cli, file, or journal)", c.LogMode)
	}

	if c.SnapThreshold < 0 {
		return fmt.Errorf("invalid snap threshold: %d (must not be negative)", c.SnapThreshold)
	}
	if c.CanvasScale <= 0 {
		return fmt.Errorf("invalid canvas scale: %v (must be positive)", c.CanvasScale)
	}
	if c.MinRenderWidth < 0 || c.MinRenderHeight < 0 {
		return fmt.Errorf("invalid minimum render size: %vx%v", c.MinRenderWidth, c.MinRenderHeight)
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("invalid viewport: %vx%v (must be positive)", c.ViewportWidth, c.ViewportHeight)
	}
	if c.MonitorsConfPath == "" {
		return fmt.Errorf("MONITORS_CONF_PATH must be set")
	}
	if c.HyprctlTimeout <= 0 {
		return fmt.Errorf("invalid hyprctl timeout: %s", c.HyprctlTimeout)
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment=%s, LogLevel=%s, Snap=%d, Scale=%.2f, Conf=%s, State=%s}",
		c.Environment, c.LogLevel, c.SnapThreshold, c.CanvasScale, c.MonitorsConfPath, c.StateDBPath)
}
