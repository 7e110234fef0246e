package timer

import (
	"errors"
	"testing"

	"github.com/fixkme/polltimer/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestBeaconScenario(t *testing.T) {
	r, src, _, c := newTestRegistry()
	t0 := src.NowLong()
	require.NoError(t, r.SetupTimer("beacon", &Definition{Interval: Float(5), Long: true, IsSet: true, Action: "ping"}))
	tm, _ := r.Get("beacon")
	assert.Equal(t, t0+5, tm.DueAt())

	src.SetLong(t0 + 3)
	fired, err := r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, c.calls["ping"])

	src.SetLong(t0 + 6)
	fired, err = r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, c.calls["ping"])
	assert.False(t, tm.Started())

	for i := 0; i < 3; i++ {
		src.AdvanceLong(10)
		fired, err = r.CheckTimers()
		require.NoError(t, err)
		assert.Equal(t, 0, fired)
	}
	assert.Equal(t, 1, c.calls["ping"])

	require.NoError(t, r.StartTimer("beacon"))
	src.AdvanceLong(5)
	_, err = r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 2, c.calls["ping"])
}

func TestShortTimerAcrossRollover(t *testing.T) {
	r, src, tab, _ := newTestRegistry()
	fired := 0
	tab.RegisterFunc("", "fast", func() { fired++ })
	src.SetShort(950)
	require.NoError(t, r.SetupTimer("fast", &Definition{Action: "fast", Interval: Float(100), IsSet: true}))

	for _, now := range []int64{960, 999, 0, 40} {
		src.SetShort(now)
		_, err := r.CheckTimers()
		require.NoError(t, err)
		assert.Equal(t, 0, fired, "now=%d", now)
	}
	src.SetShort(60)
	_, err := r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestRepeatingTimerRestartsItself(t *testing.T) {
	r, src, tab, _ := newTestRegistry()
	fired := 0
	tab.Register("example_util", "fire_repeating", func(...any) error {
		fired++
		return r.StartTimer("repeating")
	})
	require.NoError(t, r.SetupTimer("repeating", &Definition{Action: "fire_repeating", Library: "example_util", Long: true, Interval: Float(2), IsSet: true}))

	for i := 0; i < 5; i++ {
		src.AdvanceLong(2)
		n, err := r.CheckTimers()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, 5, fired)
	tm, _ := r.Get("repeating")
	assert.True(t, tm.Started())
	assert.Equal(t, src.NowLong()+2, tm.DueAt())
}

func TestFlipFlop(t *testing.T) {
	r, src, tab, _ := newTestRegistry()
	var seq []string
	tab.Register("", "fire_flipflop_A", func(...any) error {
		seq = append(seq, "A")
		return r.StartTimer("flipflop_B")
	})
	tab.Register("", "fire_flipflop_B", func(...any) error {
		seq = append(seq, "B")
		return r.StartTimer("flipflop_A")
	})
	require.NoError(t, r.SetupTimer("flipflop_A", &Definition{Action: "fire_flipflop_A", Long: true, Interval: Float(1), IsSet: true}))
	require.NoError(t, r.SetupTimer("flipflop_B", &Definition{Action: "fire_flipflop_B", Long: true, Interval: Float(2)}))

	// A在本轮启动B, B的到期时间在未来, 本轮不会触发
	for i := 0; i < 5; i++ {
		src.AdvanceLong(1)
		_, err := r.CheckTimers()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"A", "B", "A"}, seq)
}

func TestFailuresDoNotAbortPass(t *testing.T) {
	r, src, tab, c := newTestRegistry()
	e1 := errors.New("first")
	tab.Register("", "fail1", func(...any) error { return e1 })
	tab.Register("", "fail2", func(...any) error { panic("second") })

	require.NoError(t, r.SetupTimer("bad1", &Definition{Action: "fail1", Long: true, Interval: Float(1), IsSet: true}))
	require.NoError(t, r.SetupTimer("good", &Definition{Action: "ping", Long: true, Interval: Float(1), IsSet: true}))
	require.NoError(t, r.SetupTimer("bad2", &Definition{Action: "fail2", Long: true, Interval: Float(1), IsSet: true}))

	src.AdvanceLong(1)
	fired, err := r.CheckTimers()
	assert.Equal(t, 3, fired)
	require.Error(t, err)
	failures := multierr.Errors(err)
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0], e1)
	assert.Contains(t, failures[0].Error(), "bad1")
	assert.ErrorIs(t, failures[1], errs.ActionFailure)
	assert.Contains(t, failures[1].Error(), "bad2")
	assert.Equal(t, 1, c.calls["ping"])

	for _, name := range []string{"bad1", "good", "bad2"} {
		tm, _ := r.Get(name)
		assert.False(t, tm.Started(), name)
	}

	// 不会反复触发
	src.AdvanceLong(1)
	fired, err = r.CheckTimers()
	assert.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestMutationDuringPass(t *testing.T) {
	r, src, tab, c := newTestRegistry()
	tab.Register("", "reshape", func(...any) error {
		if err := r.RemoveTimer("victim"); err != nil {
			return err
		}
		// 替换后的定时器本轮不检查
		if err := r.SetupTimer("replaced", &Definition{Action: "pong", Long: true, Expiration: Float(0), IsSet: true}); err != nil {
			return err
		}
		return r.SetupTimer("added", &Definition{Action: "tick", Long: true, Expiration: Float(0), IsSet: true})
	})
	require.NoError(t, r.SetupTimer("first", &Definition{Action: "reshape", Long: true, Interval: Float(1), IsSet: true}))
	require.NoError(t, r.SetupTimer("victim", &Definition{Action: "ping", Long: true, Interval: Float(1), IsSet: true}))
	require.NoError(t, r.SetupTimer("replaced", &Definition{Action: "ping", Long: true, Interval: Float(1), IsSet: true}))

	src.AdvanceLong(1)
	fired, err := r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.calls["ping"])
	assert.Equal(t, 0, c.calls["pong"])
	assert.Equal(t, 0, c.calls["tick"])
	assert.Equal(t, []string{"first", "replaced", "added"}, r.Names())

	fired, err = r.CheckTimers()
	require.NoError(t, err)
	assert.Equal(t, 2, fired)
	assert.Equal(t, 1, c.calls["pong"])
	assert.Equal(t, 1, c.calls["tick"])
}
