package timer

import (
	"fmt"
	"math"

	"github.com/fixkme/polltimer/action"
	"github.com/fixkme/polltimer/clock"
	"github.com/fixkme/polltimer/errs"
	"github.com/rs/xid"
)

type Result int8

const (
	Skipped Result = iota // 未启用或未启动
	Pending
	Fired
)

func (r Result) String() string {
	switch r {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	}
	return "skipped"
}

// Timer 一个具名定时器. 只能通过 Registry 修改状态.
type Timer struct {
	name        string
	kind        Kind
	interval    float64
	hasInterval bool
	expiration  float64
	hasExpire   bool
	actionName  string
	library     string
	action      action.Func
	args        []any
	enabled     bool
	started     bool
	dueAt       float64 // Long, 秒
	dueTick     int64   // Short, 计数
	rollover    int64
	fired       uint64
	lastFire    xid.ID
}

func newTimer(name string, def *Definition, src clock.Source, resolver action.Resolver) (*Timer, error) {
	if def == nil {
		return nil, errs.InvalidTimerDefinition.Printf("timer %s: nil definition", name)
	}
	if def.Interval == nil && def.Expiration == nil {
		return nil, errs.InvalidTimerDefinition.Printf("timer %s: neither interval nor expiration given", name)
	}
	if def.Interval != nil && *def.Interval < 0 {
		return nil, errs.InvalidTimerDefinition.Printf("timer %s: negative interval %v", name, *def.Interval)
	}
	kind := def.Kind()
	if kind == Short && !src.HasShort() {
		return nil, errs.Also(errs.UnsupportedTimerKind.Printf("timer %s: host has no short clock", name), errs.InvalidTimerDefinition)
	}
	if kind == Short && def.Interval != nil {
		if err := checkShortInterval(*def.Interval, src.Rollover()); err != nil {
			return nil, errs.InvalidTimerDefinition.Printf("timer %s", name).Wrap(err)
		}
	}

	fn := def.Func
	if fn == nil {
		if resolver == nil {
			return nil, errs.InvalidTimerDefinition.Printf("timer %s: no resolver for action %s", name, def.Action)
		}
		var err error
		fn, err = resolver.Resolve(def.Action, def.Library)
		if err != nil {
			return nil, errs.InvalidTimerDefinition.Printf("timer %s", name).Wrap(err)
		}
		if fn == nil {
			return nil, errs.InvalidTimerDefinition.Printf("timer %s: action %s resolved to nil", name, def.Action)
		}
	}

	t := &Timer{
		name:       name,
		kind:       kind,
		actionName: def.Action,
		library:    def.Library,
		action:     fn,
		args:       action.NormalizeArgs(def.Args),
		enabled:    def.Enabled == nil || *def.Enabled,
		rollover:   src.Rollover(),
	}
	if def.Interval != nil {
		t.interval = *def.Interval
		t.hasInterval = true
	}
	if def.Expiration != nil {
		t.expiration = *def.Expiration
		t.hasExpire = true
	}
	return t, nil
}

func (t *Timer) computeDueAt(now clock.Instant) {
	if t.kind == Long {
		if t.hasInterval {
			t.dueAt = now.Long + t.interval
		} else {
			t.dueAt = t.expiration
		}
		return
	}
	if t.hasInterval {
		t.dueTick = clock.TicksAdd(now.Short, int64(t.interval), t.rollover)
	} else {
		t.dueTick = clock.TicksAdd(int64(t.expiration), 0, t.rollover)
	}
}

// IsDue 是否到期. 短定时器按环形计数比较, 到期点之后的半圈内都算到期.
func (t *Timer) IsDue(now clock.Instant) bool {
	if t.kind == Long {
		return now.Long >= t.dueAt
	}
	return clock.TicksDiff(now.Short, t.dueTick, t.rollover) >= 0
}

func (t *Timer) check(now clock.Instant) (Result, error) {
	if !t.enabled || !t.started {
		return Skipped, nil
	}
	if !t.IsDue(now) {
		return Pending, nil
	}
	return Fired, t.trigger()
}

// trigger 先停止再调用动作, 动作失败也不会反复触发
func (t *Timer) trigger() error {
	t.started = false
	t.fired++
	t.lastFire = xid.New()
	if err := t.invoke(); err != nil {
		return errs.ActionFailure.Printf("timer %s fire %s", t.name, t.lastFire).Wrap(err)
	}
	return nil
}

func (t *Timer) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.action(t.args...)
}

func (t *Timer) start(now clock.Instant) {
	t.started = true
	t.computeDueAt(now)
}

func (t *Timer) stop() {
	t.started = false
}

// checkShortInterval 短定时器的间隔必须是整数计数, 且小于半圈.
// 半圈及以上在 IsDue 的环形比较下会立刻算作到期.
func checkShortInterval(interval float64, rollover int64) error {
	if interval != math.Trunc(interval) {
		return fmt.Errorf("short interval %v is not a whole tick count", interval)
	}
	if interval >= float64(rollover/2) {
		return fmt.Errorf("short interval %v must be below half rollover %d", interval, rollover/2)
	}
	return nil
}

// overrideExpiration 总是按 now+interval 计算, 不管定义的是interval还是expiration
func (t *Timer) overrideExpiration(now clock.Instant, interval float64) error {
	if t.kind == Long {
		t.dueAt = now.Long + interval
	} else {
		if err := checkShortInterval(interval, t.rollover); err != nil {
			return err
		}
		t.dueTick = clock.TicksAdd(now.Short, int64(interval), t.rollover)
	}
	t.started = true
	return nil
}

func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) Kind() Kind {
	return t.kind
}

func (t *Timer) Enabled() bool {
	return t.enabled
}

func (t *Timer) Started() bool {
	return t.started
}

// DueAt 到期时间, Long为秒, Short为计数. 只在Started时有意义
func (t *Timer) DueAt() float64 {
	if t.kind == Long {
		return t.dueAt
	}
	return float64(t.dueTick)
}

// Fired 动作被调用的次数
func (t *Timer) Fired() uint64 {
	return t.fired
}

// LastFireID 最近一次触发的id, 未触发过为零值
func (t *Timer) LastFireID() xid.ID {
	return t.lastFire
}

func (t *Timer) Interval() (float64, bool) {
	return t.interval, t.hasInterval
}

func (t *Timer) Args() []any {
	return t.args
}

func (t *Timer) String() string {
	interval, expiration := "-", "-"
	if t.hasInterval {
		interval = fmt.Sprint(t.interval)
	}
	if t.hasExpire {
		expiration = fmt.Sprint(t.expiration)
	}
	due := "-"
	if t.started {
		if t.kind == Long {
			due = fmt.Sprintf("%.3f", t.dueAt)
		} else {
			due = fmt.Sprint(t.dueTick)
		}
	}
	act := t.actionName
	if t.library != "" {
		act = t.library + "." + act
	}
	if act == "" {
		act = "<func>"
	}
	return fmt.Sprintf("%s: kind=%s enabled=%t started=%t interval=%s expiration=%s due_at=%s action=%s args=%v fired=%d",
		t.name, t.kind, t.enabled, t.started, interval, expiration, due, act, t.args, t.fired)
}
