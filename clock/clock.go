// Package clock supplies the two time domains timers are measured in: a
// wall-clock reading in seconds since the Unix epoch (long timers) and a
// bounded millisecond counter that rolls over (short timers).
package clock

// DefaultRollover 短时钟计数周期, 与MicroPython ticks_ms一致
const DefaultRollover int64 = 1 << 30

type Source interface {
	// NowLong 距Unix纪元的秒数, 单调不减
	NowLong() float64
	// NowShort 短时钟计数, 范围 [0, Rollover())
	NowShort() int64
	Rollover() int64
	// HasShort 宿主是否提供短时钟
	HasShort() bool
}

// Instant 一次轮询使用的时钟快照
type Instant struct {
	Long  float64
	Short int64
}

// Snapshot 读取一次两个时钟. 没有短时钟时Short为0
func Snapshot(src Source) Instant {
	now := Instant{Long: src.NowLong()}
	if src.HasShort() {
		now.Short = src.NowShort()
	}
	return now
}

// TicksAdd 环形加法, 结果落在 [0, rollover)
func TicksAdd(t, delta, rollover int64) int64 {
	return mod(t+delta, rollover)
}

// TicksDiff a相对b的有符号距离, 结果落在 [-rollover/2, rollover/2).
// 大于等于0表示a在b之后(或相等).
func TicksDiff(a, b, rollover int64) int64 {
	half := rollover / 2
	return mod(a-b+half, rollover) - half
}

func mod(v, m int64) int64 {
	r := v % m
	if r < 0 {
		r += m
	}
	return r
}
