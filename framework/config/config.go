package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fixkme/polltimer/errs"
	"github.com/fixkme/polltimer/timer"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	AppVersion  string `json:"app_version" mapstructure:"app_version"`
	LogConfig   `json:",inline" mapstructure:",squash"`
	RedisConfig `json:",inline" mapstructure:",squash"`
	ClockConfig `json:",inline" mapstructure:",squash"`
	// Timers 按顺序注册, 每项必须带name, 其余字段同 timer.Definition
	Timers []map[string]any `json:"timers" mapstructure:"timers"`
}

type LogConfig struct {
	LogPath       string `json:"log_path" mapstructure:"log_path"`
	LogName       string `json:"log_name" mapstructure:"log_name"`
	LogLevel      string `json:"log_level" mapstructure:"log_level"`
	LogStdOut     bool   `json:"log_std_out" mapstructure:"log_std_out"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" mapstructure:"log_max_backups"`
}

type RedisConfig struct {
	RedisMode       string `json:"redis_mode" mapstructure:"redis_mode"` // single/sentinel/cluster
	RedisAddr       string `json:"redis_addr" mapstructure:"redis_addr"` // 多个地址用,隔开
	RedisMasterName string `json:"redis_master_name" mapstructure:"redis_master_name"`
	RedisPassword   string `json:"redis_password" mapstructure:"redis_password"`
	RedisDB         int    `json:"redis_db" mapstructure:"redis_db"`
	RedisChannel    string `json:"redis_channel" mapstructure:"redis_channel"` // publish动作的频道
}

type ClockConfig struct {
	PollIntervalMs int   `json:"poll_interval_ms" mapstructure:"poll_interval_ms"` // 主循环间隔 毫秒
	ShortRollover  int64 `json:"short_rollover" mapstructure:"short_rollover"`     // 短时钟周期, 0用默认值
	NoShortClock   bool  `json:"no_short_clock" mapstructure:"no_short_clock"`
	TimeOffsetSec  int64 `json:"time_offset_sec" mapstructure:"time_offset_sec"` // 长时钟偏移 秒
}

const defaultPollIntervalMs = 50

// LoadConfig 按后缀解析json或yaml, 再调用loadConfigFromEnv覆盖
func LoadConfig(configFile string, loadConfigFromEnv func(*AppConfig) error) (*AppConfig, error) {
	conf := new(AppConfig)
	if len(configFile) != 0 {
		if err := loadConfigFromFile(configFile, conf); err != nil {
			return nil, err
		}
	}
	if loadConfigFromEnv != nil {
		if err := loadConfigFromEnv(conf); err != nil {
			return nil, err
		}
	}
	if conf.PollIntervalMs <= 0 {
		conf.PollIntervalMs = defaultPollIntervalMs
	}
	return conf, nil
}

func loadConfigFromFile(configFile string, conf *AppConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", configFile, err)
	}
	return decode(raw, conf)
}

// lenientBool 字符串转bool: 空串和(不分大小写的)"false"为false, 其余都是true
func lenientBool(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Bool {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	return s != "" && !strings.EqualFold(s, "false"), nil
}

func decode(input any, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncKind(lenientBool),
		WeaklyTypedInput: true, // "5" 之类的数字字符串也接受
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeDefinition 把配置中的一项转成定时器定义, running 是 is_set 的别名
func DecodeDefinition(raw map[string]any) (string, *timer.Definition, error) {
	name, _ := raw["name"].(string)
	if name == "" {
		return "", nil, errs.InvalidTimerDefinition.Printf("timer without name")
	}
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "name" {
			continue
		}
		fields[k] = v
	}
	if v, ok := fields["running"]; ok {
		if _, set := fields["is_set"]; !set {
			fields["is_set"] = v
		}
		delete(fields, "running")
	}
	def := new(timer.Definition)
	if err := decode(fields, def); err != nil {
		return name, nil, errs.InvalidTimerDefinition.Printf("timer %s", name).Wrap(err)
	}
	return name, def, nil
}

// SetupTimers 按配置顺序注册所有定时器, 遇到错误立即返回
func (conf *AppConfig) SetupTimers(reg *timer.Registry) error {
	for _, raw := range conf.Timers {
		name, def, err := DecodeDefinition(raw)
		if err != nil {
			return err
		}
		if err = reg.SetupTimer(name, def); err != nil {
			return err
		}
	}
	return nil
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
