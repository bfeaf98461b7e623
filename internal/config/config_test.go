package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/dshills/announcement/internal/config/loader"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	assert.True(t, c.Serialize.Bool)
	assert.False(t, c.Serialize.Valid)
	assert.Equal(t, "info", c.LogLevel.String)
	assert.Equal(t, LogFormatText, c.LogFormat.String)
	assert.False(t, c.Trace.Bool)
	assert.False(t, c.LuaNamespace.Valid)
	assert.NoError(t, c.Validate())
}

func TestConfig_Apply(t *testing.T) {
	t.Parallel()

	base := NewConfig()
	got := base.Apply(Config{
		Serialize: null.BoolFrom(false),
		LogLevel:  null.StringFrom(""),
		Trace:     null.BoolFrom(true),
	})

	assert.Equal(t, null.BoolFrom(false), got.Serialize)
	assert.Equal(t, "info", got.LogLevel.String, "empty strings do not override")
	assert.Equal(t, null.BoolFrom(true), got.Trace)
	assert.Equal(t, base.LogFormat, got.LogFormat)

	assert.Equal(t, got, got.Apply(Config{}), "an empty layer changes nothing")
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	c, err := FromEnv(map[string]string{
		"ANNOUNCE_SERIALIZE":     "false",
		"ANNOUNCE_LOG_LEVEL":     "debug",
		"ANNOUNCE_LUA_NAMESPACE": "plugin.spell",
		"UNRELATED":              "x",
	})
	require.NoError(t, err)

	assert.Equal(t, null.BoolFrom(false), c.Serialize)
	assert.Equal(t, null.StringFrom("debug"), c.LogLevel)
	assert.Equal(t, null.StringFrom("plugin.spell"), c.LuaNamespace)
	assert.False(t, c.Trace.Valid)
	assert.False(t, c.LogFormat.Valid)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Parallel()

	_, err := FromEnv(map[string]string{"ANNOUNCE_TRACE": "maybe"})
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	trace := true
	level := "warn"
	c := FromFile(loader.File{Trace: &trace, LogLevel: &level})

	assert.Equal(t, null.BoolFrom(true), c.Trace)
	assert.Equal(t, null.StringFrom("warn"), c.LogLevel)
	assert.False(t, c.Serialize.Valid)
}

func TestConsolidate_Layering(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"announce.toml": {Data: []byte(`
serialize = false
logLevel = "debug"
logFormat = "json"
`)},
	}

	c, err := Consolidate(loader.NewWithFS(fsys), "announce.toml", map[string]string{
		"ANNOUNCE_LOG_LEVEL": "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, null.BoolFrom(false), c.Serialize, "file overrides default")
	assert.Equal(t, null.StringFrom("warn"), c.LogLevel, "env overrides file")
	assert.Equal(t, null.StringFrom("json"), c.LogFormat)
	assert.False(t, c.Trace.Bool, "default kept")
}

func TestConsolidate_NoFile(t *testing.T) {
	t.Parallel()

	l := loader.NewWithFS(fstest.MapFS{})

	c, err := Consolidate(l, "", nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), c)

	c, err = Consolidate(l, "missing.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), c)
}

func TestConsolidate_Errors(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"bad.json":     {Data: []byte(`{"serialize":`)},
		"invalid.yaml": {Data: []byte("logLevel: loud\n")},
	}
	l := loader.NewWithFS(fsys)

	_, err := Consolidate(l, "bad.json", nil)
	var perr *loader.ParseError
	assert.ErrorAs(t, err, &perr)

	_, err = Consolidate(l, "invalid.yaml", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = Consolidate(l, "", map[string]string{"ANNOUNCE_SERIALIZE": "perhaps"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"bad level", Config{LogLevel: null.StringFrom("loud")}, "logLevel"},
		{"bad format", Config{LogFormat: null.StringFrom("xml")}, "logFormat"},
		{"bad namespace", Config{LuaNamespace: null.StringFrom("a..b")}, "luaNamespace"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewConfig().Apply(tt.cfg).Validate()
			require.ErrorIs(t, err, ErrValidationFailed)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	err := Config{
		LogLevel:  null.StringFrom("loud"),
		LogFormat: null.StringFrom("xml"),
	}.Validate()
	assert.ErrorContains(t, err, "logLevel")
	assert.ErrorContains(t, err, "logFormat")

	assert.NoError(t, Config{LuaNamespace: null.StringFrom("plugin.spell")}.Validate())
}

func TestConfig_JSON(t *testing.T) {
	t.Parallel()

	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"serialize":false,"logLevel":null}`), &c))
	assert.Equal(t, null.BoolFrom(false), c.Serialize)
	assert.False(t, c.LogLevel.Valid)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(NewConfig().Apply(Config{
		LogLevel:  null.StringFrom("warn"),
		LogFormat: null.StringFrom(LogFormatJSON),
	}), &buf)
	require.NoError(t, err)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.WithField("event", "ping").Warn("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "ping", line["event"])
}

func TestNewLogger_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(NewConfig(), &buf)
	require.NoError(t, err)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestApplyLogger_BadLevel(t *testing.T) {
	t.Parallel()

	err := ApplyLogger(logrus.New(), Config{LogLevel: null.StringFrom("loud")})
	assert.Error(t, err)
}

func TestConfig_Fields(t *testing.T) {
	t.Parallel()

	fields := NewConfig().Fields()
	assert.Equal(t, true, fields["serialize"])
	assert.Equal(t, "info", fields["logLevel"])
}
