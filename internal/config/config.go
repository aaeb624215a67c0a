// Package config holds compactlog settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// a TOML file, and COMPACTLOG_* environment variables.
//
//	[engine]
//	min_payload_length = 2
//
//	[store]
//	backend = "json"          # memory, sqlite, or json
//	path = ".compactlog.json"
//
//	[log]
//	level = "warn"
//
//	[view]
//	highlight_fg = "black"
//	highlight_bg = "yellow"
//	marker = "▸"
//
//	[script]
//	instruction_limit = 1000000
//
//	[watch]
//	debounce = "150ms"
package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/compactlog/internal/config/loader"
	"github.com/dshills/compactlog/internal/logging"
	"github.com/dshills/compactlog/internal/store"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "COMPACTLOG_"

// Config is the complete configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	View   ViewConfig   `toml:"view"`
	Script ScriptConfig `toml:"script"`
	Watch  WatchConfig  `toml:"watch"`
}

// EngineConfig tunes the synchronization controller.
type EngineConfig struct {
	// MinPayloadLength is the shortest padded expression segment an
	// annotation may keep before it is unwrapped.
	MinPayloadLength int `toml:"min_payload_length"`
}

// StoreConfig selects where stripped log positions are saved.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level string `toml:"level"`
}

// ViewConfig styles the terminal view.
type ViewConfig struct {
	HighlightFg string `toml:"highlight_fg"`
	HighlightBg string `toml:"highlight_bg"`
	Marker      string `toml:"marker"`
}

// ScriptConfig bounds Lua scripts.
type ScriptConfig struct {
	// InstructionLimit caps the compactlog API calls a script may make;
	// zero means no limit.
	InstructionLimit int `toml:"instruction_limit"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce string `toml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{MinPayloadLength: 2},
		Store:  StoreConfig{Backend: store.BackendJSON, Path: ".compactlog.json"},
		Log:    LogConfig{Level: "warn"},
		View:   ViewConfig{HighlightFg: "black", HighlightBg: "yellow", Marker: "▸"},
		Script: ScriptConfig{InstructionLimit: 1_000_000},
		Watch:  WatchConfig{Debounce: "150ms"},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if it
// exists), and the environment.
func Load(path string) (*Config, error) {
	return load(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

func load(sources ...loader.Loader) (*Config, error) {
	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged map, rejecting settings Config does not know.
func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Engine.MinPayloadLength < 1 {
		return &ValidationError{Path: "engine.min_payload_length", Value: c.Engine.MinPayloadLength, Message: "must be at least 1"}
	}
	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendSQLite, store.BackendJSON:
		if c.Store.Path == "" {
			return &ValidationError{Path: "store.path", Value: c.Store.Path, Message: "required for the " + c.Store.Backend + " backend"}
		}
	default:
		return &ValidationError{Path: "store.backend", Value: c.Store.Backend, Message: "must be memory, sqlite, or json"}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn, or error"}
	}
	for path, name := range map[string]string{"view.highlight_fg": c.View.HighlightFg, "view.highlight_bg": c.View.HighlightBg} {
		if _, ok := tcell.ColorNames[name]; !ok {
			return &ValidationError{Path: path, Value: name, Message: "unknown color"}
		}
	}
	if c.View.Marker == "" {
		return &ValidationError{Path: "view.marker", Value: c.View.Marker, Message: "must not be empty"}
	}
	if c.Script.InstructionLimit < 0 {
		return &ValidationError{Path: "script.instruction_limit", Value: c.Script.InstructionLimit, Message: "must not be negative"}
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
		return &ValidationError{Path: "watch.debounce", Value: c.Watch.Debounce, Message: "must be a non-negative duration"}
	}
	return nil
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	d, _ := time.ParseDuration(c.Watch.Debounce)
	return d
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
