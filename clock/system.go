package clock

import (
	"sync/atomic"
	"time"
)

type Option func(*System)

func WithRollover(rollover int64) Option {
	return func(s *System) {
		if rollover > 1 {
			s.rollover = rollover
		}
	}
}

// WithoutShort 模拟没有短时钟的宿主
func WithoutShort() Option {
	return func(s *System) {
		s.noShort = true
	}
}

// System 真实时钟. 短时钟是创建以来经过的毫秒数(单调时钟)对rollover取模.
type System struct {
	start    time.Time
	rollover int64
	noShort  bool
	offset   atomic.Int64 // 时间偏移 纳秒
}

func NewSystem(opts ...Option) *System {
	s := &System{
		start:    time.Now(),
		rollover: DefaultRollover,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTimeOffset 设置长时钟偏移量, 用于校时
func (s *System) SetTimeOffset(d time.Duration) {
	s.offset.Store(int64(d))
}

func (s *System) GetTimeOffset() time.Duration {
	return time.Duration(s.offset.Load())
}

func (s *System) Now() time.Time {
	now := time.Now()
	if off := s.offset.Load(); off != 0 {
		now = now.Add(time.Duration(off))
	}
	return now
}

func (s *System) NowLong() float64 {
	return float64(s.Now().UnixNano()) / 1e9
}

func (s *System) NowShort() int64 {
	return mod(time.Since(s.start).Milliseconds(), s.rollover)
}

func (s *System) Rollover() int64 {
	return s.rollover
}

func (s *System) HasShort() bool {
	return !s.noShort
}
