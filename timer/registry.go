// Package timer keeps named timers and fires their actions when a poll pass
// finds them due. Nothing here runs on its own: the host calls CheckTimers
// from its main loop.
//
// Registry is not safe for concurrent use. Hosts that touch it from more than
// one goroutine must serialize the calls themselves. Actions may call back
// into the registry while a poll pass is running.
package timer

import (
	"github.com/armon/go-radix"
	"github.com/fixkme/polltimer/action"
	"github.com/fixkme/polltimer/clock"
	"github.com/fixkme/polltimer/errs"
	"github.com/fixkme/polltimer/mlog"
	"github.com/google/uuid"
)

type Registry struct {
	id       string
	src      clock.Source
	resolver action.Resolver
	index    *radix.Tree // name -> *Timer
	order    []string    // 插入顺序
}

func NewRegistry(src clock.Source, resolver action.Resolver) *Registry {
	return &Registry{
		id:       uuid.New().String(),
		src:      src,
		resolver: resolver,
		index:    radix.New(),
	}
}

func (r *Registry) ID() string {
	return r.id
}

func (r *Registry) Clock() clock.Source {
	return r.src
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) lookup(name string) (*Timer, bool) {
	v, ok := r.index.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Timer), true
}

func (r *Registry) get(op, name string) (*Timer, error) {
	t, ok := r.lookup(name)
	if !ok {
		return nil, errs.UnknownTimer.Printf("%s %s", op, name)
	}
	return t, nil
}

// Get 查找定时器, 返回的Timer只读
func (r *Registry) Get(name string) (*Timer, bool) {
	return r.lookup(name)
}

// Names 按插入顺序返回所有名字
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Match 返回以prefix开头的名字, 按字典序
func (r *Registry) Match(prefix string) []string {
	var names []string
	r.index.WalkPrefix(prefix, func(name string, _ interface{}) bool {
		names = append(names, name)
		return false
	})
	return names
}

// SetupTimer 创建或替换定时器. 替换时保留原来的顺序位置.
// 定义无效时不会修改注册表.
func (r *Registry) SetupTimer(name string, def *Definition) error {
	if name == "" {
		return errs.InvalidTimerDefinition.Print("setup_timer", "empty name")
	}
	t, err := newTimer(name, def, r.src, r.resolver)
	if err != nil {
		mlog.Warnf("setup_timer %s failed: %v", name, err)
		return err
	}
	if _, updated := r.index.Insert(name, t); !updated {
		r.order = append(r.order, name)
	}
	if def.IsSet {
		t.start(clock.Snapshot(r.src))
	}
	mlog.Debugf("setup_timer %s", t)
	return nil
}

func (r *Registry) StartTimer(name string) error {
	t, err := r.get("start_timer", name)
	if err != nil {
		return err
	}
	t.start(clock.Snapshot(r.src))
	mlog.Tracef("start_timer %s due_at=%v", name, t.DueAt())
	return nil
}

// StopTimer 停止, 不会调用动作
func (r *Registry) StopTimer(name string) error {
	t, err := r.get("stop_timer", name)
	if err != nil {
		return err
	}
	t.stop()
	return nil
}

// TriggerTimer 立即调用动作并停止, 不检查是否到期, 也不检查是否启用
func (r *Registry) TriggerTimer(name string) error {
	t, err := r.get("trigger_timer", name)
	if err != nil {
		return err
	}
	if err = t.trigger(); err != nil {
		mlog.Errorf("trigger_timer %s: %v", name, err)
		return err
	}
	mlog.Debugf("trigger_timer %s fire %s", name, t.lastFire)
	return nil
}

// OverrideTimerExpiration 到期时间改为从现在起interval之后并启动.
// 单位与定时器类型一致: Long为秒, Short为毫秒计数.
func (r *Registry) OverrideTimerExpiration(name string, interval float64) error {
	t, err := r.get("override_timer_expiration", name)
	if err != nil {
		return err
	}
	if err = t.overrideExpiration(clock.Snapshot(r.src), interval); err != nil {
		return errs.InvalidTimerDefinition.Printf("override_timer_expiration %s", name).Wrap(err)
	}
	mlog.Tracef("override_timer_expiration %s due_at=%v", name, t.DueAt())
	return nil
}

func (r *Registry) EnableTimer(name string) error {
	t, err := r.get("enable_timer", name)
	if err != nil {
		return err
	}
	t.enabled = true
	return nil
}

// DisableTimer 轮询时跳过, 保留started和due_at
func (r *Registry) DisableTimer(name string) error {
	t, err := r.get("disable_timer", name)
	if err != nil {
		return err
	}
	t.enabled = false
	return nil
}

func (r *Registry) RemoveTimer(name string) error {
	if _, ok := r.index.Delete(name); !ok {
		return errs.UnknownTimer.Printf("remove_timer %s", name)
	}
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ForceRestart 所有已启动的定时器按当前时钟重新计算到期时间, 用于时钟跳变或进程恢复后
func (r *Registry) ForceRestart() {
	now := clock.Snapshot(r.src)
	n := 0
	for _, name := range r.order {
		t, ok := r.lookup(name)
		if !ok || !t.started {
			continue
		}
		t.start(now)
		n++
	}
	mlog.Infof("force_restart registry %s restarted %d timers", r.id, n)
}
