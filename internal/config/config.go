// Package config loads autotext settings from defaults, an optional config
// file and AUTOTEXT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. AUTOTEXT_LOG_LEVEL.
const EnvPrefix = "AUTOTEXT"

// Config is the resolved configuration.
type Config struct {
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Watch       WatchConfig       `mapstructure:"watch"`
	Clipboard   ClipboardConfig   `mapstructure:"clipboard"`
	Typer       TyperConfig       `mapstructure:"typer"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Output      OutputConfig      `mapstructure:"output"`
	Log         LogConfig         `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// DefinitionsConfig locates the snippet definition file.
type DefinitionsConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig controls automatic reloads.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ClipboardConfig selects the command printing the clipboard text.
type ClipboardConfig struct {
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TyperConfig selects how expansions reach the focused application. An
// empty command writes expansions to stdout.
type TyperConfig struct {
	Command      string `mapstructure:"command"`
	EraseCommand string `mapstructure:"erase_command"`
}

// NotifyConfig controls reload notifications.
type NotifyConfig struct {
	Command       string `mapstructure:"command"`
	ReloadTitle   string `mapstructure:"reload_title"`
	ReloadMessage string `mapstructure:"reload_message"`
	QueueSize     int    `mapstructure:"queue_size"`
}

// OutputConfig controls rendered text.
type OutputConfig struct {
	Newline string `mapstructure:"newline"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Dir returns the directory holding autotext.yaml and the default
// definition file.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "autotext")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "autotext")
	}
	return "."
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("definitions.path", filepath.Join(Dir(), "snippets.yaml"))

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 500*time.Millisecond)

	v.SetDefault("clipboard.command", "")
	v.SetDefault("clipboard.timeout", 2*time.Second)

	v.SetDefault("typer.command", "")
	v.SetDefault("typer.erase_command", "")

	v.SetDefault("notify.command", "notify-send -t 3000")
	v.SetDefault("notify.reload_title", "")
	v.SetDefault("notify.reload_message", "")
	v.SetDefault("notify.queue_size", 8)

	v.SetDefault("output.newline", "\n")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// New builds a viper instance with defaults and environment binding. When
// file is empty autotext.{yaml,toml} is searched in Dir().
func New(file string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("autotext")
		v.AddConfigPath(Dir())
	}
	return v
}

// Load reads the configuration. A missing config file is only an error when
// file was given explicitly.
func Load(file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return LoadWithViper(New(file))
}

// LoadWithViper reads and decodes the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Definitions.Path = expandHome(cfg.Definitions.Path)
	if cfg.Output.Newline == "" {
		cfg.Output.Newline = "\n"
	}
	return &cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
