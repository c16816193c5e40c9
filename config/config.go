// Package config loads and saves tms99105sim's TOML configuration
// file: platform-specific path resolution, loads fall back to
// defaults, saves create missing directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tms99105sim setting a user can override from
// config.toml.
type Config struct {
	Machine struct {
		Platform          string `toml:"platform"`           // TMS9900, TMS9995, TMS99105, TMS99110
		DefaultCheckpoint int    `toml:"default_checkpoint"` // format-12 checkpoint register fallback
	} `toml:"machine"`

	Execution struct {
		MaxSteps     int    `toml:"max_steps"`
		DefaultEntry string `toml:"default_entry"`
		EnableStats  bool   `toml:"enable_stats"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
		ShowNext      bool `toml:"show_next_instruction"`
	} `toml:"debugger"`

	Display struct {
		ColorOutput    bool   `toml:"color_output"`
		BytesPerLine   int    `toml:"bytes_per_line"`
		DisasmContext  int    `toml:"disasm_context"`
		NumberFormat   string `toml:"number_format"` // hex, dec
	} `toml:"display"`

	Statistics struct {
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // text, json
	} `toml:"statistics"`
}

// DefaultConfig returns a Config with every setting at its default
// value.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Machine.Platform = "TMS99105"
	cfg.Machine.DefaultCheckpoint = 10

	cfg.Execution.MaxSteps = 1000000
	cfg.Execution.DefaultEntry = ">0100"
	cfg.Execution.EnableStats = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowNext = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.DisasmContext = 5
	cfg.Display.NumberFormat = "hex"

	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"

	return cfg
}

// GetConfigPath returns the platform-specific config file path,
// creating its directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "tms99105sim")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "tms99105sim")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path, creating its directory if
// necessary.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	return nil
}
