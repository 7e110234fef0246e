package clock

// Manual 由调用方拨动的时钟, 用于测试或自带计数器的宿主
type Manual struct {
	long     float64
	short    int64
	rollover int64
	noShort  bool
}

func NewManual(long float64, short int64, rollover int64) *Manual {
	if rollover <= 1 {
		rollover = DefaultRollover
	}
	return &Manual{long: long, short: mod(short, rollover), rollover: rollover}
}

// NewManualLongOnly 没有短时钟的手动时钟
func NewManualLongOnly(long float64) *Manual {
	m := NewManual(long, 0, 0)
	m.noShort = true
	return m
}

func (m *Manual) SetLong(v float64) {
	m.long = v
}

func (m *Manual) AdvanceLong(d float64) {
	m.long += d
}

func (m *Manual) SetShort(v int64) {
	m.short = mod(v, m.rollover)
}

// AdvanceShort 前进d个计数, 超出rollover回绕
func (m *Manual) AdvanceShort(d int64) {
	m.short = TicksAdd(m.short, d, m.rollover)
}

func (m *Manual) NowLong() float64 {
	return m.long
}

func (m *Manual) NowShort() int64 {
	return m.short
}

func (m *Manual) Rollover() int64 {
	return m.rollover
}

func (m *Manual) HasShort() bool {
	return !m.noShort
}
