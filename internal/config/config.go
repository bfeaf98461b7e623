package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"github.com/dshills/announcement/internal/config/loader"
	"github.com/dshills/announcement/internal/event/topic"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds dispatcher settings.
type Config struct {
	// Serialize selects serialized draining of emit batches.
	Serialize null.Bool `json:"serialize" envconfig:"ANNOUNCE_SERIALIZE"`

	// LogLevel is a logrus level name.
	LogLevel null.String `json:"logLevel" envconfig:"ANNOUNCE_LOG_LEVEL"`

	// LogFormat is "text" or "json".
	LogFormat null.String `json:"logFormat" envconfig:"ANNOUNCE_LOG_FORMAT"`

	// Trace enables batch spans on the global tracer provider.
	Trace null.Bool `json:"trace" envconfig:"ANNOUNCE_TRACE"`

	// LuaNamespace prefixes event names used from Lua scripts.
	LuaNamespace null.String `json:"luaNamespace" envconfig:"ANNOUNCE_LUA_NAMESPACE"`
}

// NewConfig returns the built-in defaults. Defaults are not marked valid,
// so they never override another layer.
func NewConfig() Config {
	return Config{
		Serialize: null.NewBool(true, false),
		LogLevel:  null.NewString("info", false),
		LogFormat: null.NewString(LogFormatText, false),
		Trace:     null.NewBool(false, false),
	}
}

// Apply returns c with every valid field of cfg replacing c's value.
func (c Config) Apply(cfg Config) Config {
	if cfg.Serialize.Valid {
		c.Serialize = cfg.Serialize
	}
	if cfg.LogLevel.Valid && cfg.LogLevel.String != "" {
		c.LogLevel = cfg.LogLevel
	}
	if cfg.LogFormat.Valid && cfg.LogFormat.String != "" {
		c.LogFormat = cfg.LogFormat
	}
	if cfg.Trace.Valid {
		c.Trace = cfg.Trace
	}
	if cfg.LuaNamespace.Valid {
		c.LuaNamespace = cfg.LuaNamespace
	}
	return c
}

// FromFile converts a loaded file into a Config layer.
func FromFile(f loader.File) Config {
	return Config{
		Serialize:    null.BoolFromPtr(f.Serialize),
		LogLevel:     null.StringFromPtr(f.LogLevel),
		LogFormat:    null.StringFromPtr(f.LogFormat),
		Trace:        null.BoolFromPtr(f.Trace),
		LuaNamespace: null.StringFromPtr(f.LuaNamespace),
	}
}

// FromEnv reads the ANNOUNCE_* variables from env.
func FromEnv(env map[string]string) (Config, error) {
	var c Config
	if err := envconfig.Process("", &c, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return c, nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// GetConsolidatedConfig layers defaults, the file at path (if path is not
// empty) and env, then validates the result. A missing file is not an
// error.
func GetConsolidatedConfig(path string, env map[string]string) (Config, error) {
	return Consolidate(loader.New(), path, env)
}

// Consolidate is GetConsolidatedConfig with an explicit loader.
func Consolidate(l *loader.Loader, path string, env map[string]string) (Config, error) {
	result := NewConfig()

	if path != "" {
		file, _, err := l.LoadWithIncludes(path, loader.DefaultMaxIncludeDepth)
		if err != nil {
			return result, err
		}
		result = result.Apply(FromFile(file))
	}

	envConfig, err := FromEnv(env)
	if err != nil {
		return result, err
	}
	result = result.Apply(envConfig)

	return result, result.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if c.LogLevel.String != "" {
		if _, err := logrus.ParseLevel(c.LogLevel.String); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "logLevel",
				Message: "unknown log level",
				Value:   c.LogLevel.String,
			})
		}
	}

	if c.LogFormat.String != "" {
		switch c.LogFormat.String {
		case LogFormatText, LogFormatJSON:
		default:
			errs = append(errs, &ValidationError{
				Field:   "logFormat",
				Message: `must be "text" or "json"`,
				Value:   c.LogFormat.String,
			})
		}
	}

	if c.LuaNamespace.String != "" && !topic.Topic(c.LuaNamespace.String).IsValid() {
		errs = append(errs, &ValidationError{
			Field:   "luaNamespace",
			Message: "must be dot-separated non-empty segments",
			Value:   c.LuaNamespace.String,
		})
	}

	return errors.Join(errs...)
}
