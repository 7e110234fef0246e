package timer

import "github.com/fixkme/polltimer/action"

type Kind int8

const (
	Short Kind = iota // 短时钟计数(毫秒), 会回绕
	Long              // 距纪元的秒数
)

func (k Kind) String() string {
	if k == Long {
		return "long"
	}
	return "short"
}

// Definition 定时器定义, 对应配置中的一项
type Definition struct {
	Action  string `json:"action" mapstructure:"action"`
	Library string `json:"library,omitempty" mapstructure:"library"`
	// Args 标量/列表/map, 见 action.NormalizeArgs
	Args  any  `json:"args,omitempty" mapstructure:"args"`
	IsSet bool `json:"is_set" mapstructure:"is_set"`
	Long  bool `json:"long" mapstructure:"long"`
	// Interval 与 Expiration 至少一个, 都有时 Interval 优先
	Interval   *float64 `json:"interval,omitempty" mapstructure:"interval"`
	Expiration *float64 `json:"expiration,omitempty" mapstructure:"expiration"`
	Enabled    *bool    `json:"enabled,omitempty" mapstructure:"enabled"`

	// Func 直接指定动作, 不经过Resolver
	Func action.Func `json:"-" mapstructure:"-"`
}

func (d *Definition) Kind() Kind {
	if d.Long {
		return Long
	}
	return Short
}

func Float(v float64) *float64 {
	return &v
}

func Bool(v bool) *bool {
	return &v
}
