package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fixkme/polltimer/action"
	"github.com/fixkme/polltimer/clock"
	"github.com/fixkme/polltimer/errs"
	"github.com/fixkme/polltimer/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConf = `{
  "app_version": "1.0",
  "log_level": "debug",
  "redis_addr": "127.0.0.1:6379",
  "poll_interval_ms": 20,
  "short_rollover": 1000,
  "timers": [
    {"name": "flipflop_B", "interval": 2, "action": "fire_flipflop_B", "library": "example_util", "long": true},
    {"name": "one_shot", "interval": "3", "action": "fire_one_shot", "long": "True", "running": "true"},
    {"name": "fast", "interval": 250, "action": "fire_one_shot", "long": "false", "args": [1, "x"]}
  ]
}`

const yamlConf = `
app_version: "2.0"
log_std_out: true
timers:
  - name: alarm
    expiration: 1700000000
    action: mark_minute
    long: true
    enabled: false
    args: {key: value}
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	conf, err := LoadConfig(writeFile(t, "timers.json", jsonConf), nil)
	require.NoError(t, err)
	assert.Equal(t, "1.0", conf.AppVersion)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "127.0.0.1:6379", conf.RedisAddr)
	assert.Equal(t, 20, conf.PollIntervalMs)
	assert.Equal(t, int64(1000), conf.ShortRollover)
	require.Len(t, conf.Timers, 3)

	name, def, err := DecodeDefinition(conf.Timers[0])
	require.NoError(t, err)
	assert.Equal(t, "flipflop_B", name)
	assert.Equal(t, "fire_flipflop_B", def.Action)
	assert.Equal(t, "example_util", def.Library)
	assert.True(t, def.Long)
	assert.False(t, def.IsSet)
	require.NotNil(t, def.Interval)
	assert.Equal(t, 2.0, *def.Interval)
	assert.Nil(t, def.Expiration)

	_, def, err = DecodeDefinition(conf.Timers[1])
	require.NoError(t, err)
	assert.True(t, def.Long)
	assert.True(t, def.IsSet)
	assert.Equal(t, 3.0, *def.Interval)

	_, def, err = DecodeDefinition(conf.Timers[2])
	require.NoError(t, err)
	assert.Equal(t, timer.Short, def.Kind())
	assert.Equal(t, []any{1.0, "x"}, action.NormalizeArgs(def.Args))
}

func TestLoadYAML(t *testing.T) {
	conf, err := LoadConfig(writeFile(t, "timers.yaml", yamlConf), nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0", conf.AppVersion)
	assert.True(t, conf.LogStdOut)
	assert.Equal(t, defaultPollIntervalMs, conf.PollIntervalMs)

	name, def, err := DecodeDefinition(conf.Timers[0])
	require.NoError(t, err)
	assert.Equal(t, "alarm", name)
	assert.Equal(t, 1700000000.0, *def.Expiration)
	require.NotNil(t, def.Enabled)
	assert.False(t, *def.Enabled)
	assert.Equal(t, []any{map[string]any{"key": "value"}}, action.NormalizeArgs(def.Args))
}

func TestLoadFromEnv(t *testing.T) {
	conf, err := LoadConfig("", func(c *AppConfig) error {
		c.LogLevel = "warn"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "warn", conf.LogLevel)

	envErr := errors.New("env")
	_, err = LoadConfig("", func(*AppConfig) error { return envErr })
	assert.ErrorIs(t, err, envErr)

	_, err = LoadConfig(writeFile(t, "bad.json", "{"), nil)
	assert.Error(t, err)
}

func TestDecodeDefinitionErrors(t *testing.T) {
	_, _, err := DecodeDefinition(map[string]any{"interval": 1})
	assert.ErrorIs(t, err, errs.InvalidTimerDefinition)

	_, _, err = DecodeDefinition(map[string]any{"name": "x", "interval": "soon"})
	assert.ErrorIs(t, err, errs.InvalidTimerDefinition)
	assert.Contains(t, err.Error(), "timer x")
}

func TestDecodeDefinitionLenientBool(t *testing.T) {
	_, def, err := DecodeDefinition(map[string]any{"name": "a", "interval": 1, "long": "yes", "running": "on"})
	require.NoError(t, err)
	assert.Equal(t, timer.Long, def.Kind())
	assert.True(t, def.IsSet)

	_, def, err = DecodeDefinition(map[string]any{"name": "b", "interval": 1, "long": "FALSE", "is_set": " False "})
	require.NoError(t, err)
	assert.Equal(t, timer.Short, def.Kind())
	assert.False(t, def.IsSet)

	_, def, err = DecodeDefinition(map[string]any{"name": "c", "interval": 1, "long": "", "enabled": "no"})
	require.NoError(t, err)
	assert.False(t, def.Long)
	require.NotNil(t, def.Enabled)
	assert.True(t, *def.Enabled)

	_, def, err = DecodeDefinition(map[string]any{"name": "d", "interval": 1, "long": 1, "enabled": "false"})
	require.NoError(t, err)
	assert.True(t, def.Long)
	require.NotNil(t, def.Enabled)
	assert.False(t, *def.Enabled)
}

func TestSetupTimers(t *testing.T) {
	conf, err := LoadConfig(writeFile(t, "timers.json", jsonConf), nil)
	require.NoError(t, err)

	tab := action.NewTable()
	tab.RegisterFunc("example_util", "fire_flipflop_B", func() {})
	tab.RegisterFunc("", "fire_one_shot", func() {})
	reg := timer.NewRegistry(clock.NewManual(100, 0, conf.ShortRollover), tab)
	require.NoError(t, conf.SetupTimers(reg))
	assert.Equal(t, []string{"flipflop_B", "one_shot", "fast"}, reg.Names())

	shot, _ := reg.Get("one_shot")
	assert.True(t, shot.Started())
	assert.Equal(t, 103.0, shot.DueAt())

	// 没有短时钟的宿主拒绝short定时器
	reg = timer.NewRegistry(clock.NewManualLongOnly(100), tab)
	err = conf.SetupTimers(reg)
	assert.ErrorIs(t, err, errs.UnsupportedTimerKind)
	assert.Equal(t, []string{"flipflop_B", "one_shot"}, reg.Names())
}

func TestJsonFormat(t *testing.T) {
	var conf *AppConfig
	assert.Equal(t, "{}", conf.JsonFormat())
	conf = &AppConfig{AppVersion: "1"}
	assert.Contains(t, conf.JsonFormat(), `"app_version": "1"`)
}
