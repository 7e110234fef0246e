package timer

import (
	"github.com/fixkme/polltimer/clock"
	"github.com/fixkme/polltimer/mlog"
	"go.uber.org/multierr"
)

// CheckTimers 主循环每次迭代调用一次. 时钟只读一次, 开始前先固定要检查的定时器列表,
// 动作中增删改定时器是安全的. 动作失败不会中断本轮, 所有失败合并返回.
func (r *Registry) CheckTimers() (fired int, err error) {
	now := clock.Snapshot(r.src)
	pass := make([]*Timer, 0, len(r.order))
	for _, name := range r.order {
		if t, ok := r.lookup(name); ok {
			pass = append(pass, t)
		}
	}

	for _, t := range pass {
		// 本轮中被删除或替换的不再检查
		if cur, ok := r.lookup(t.name); !ok || cur != t {
			continue
		}
		res, e := t.check(now)
		if res == Fired {
			fired++
			mlog.Debugf("timer %s fired, fire %s", t.name, t.lastFire)
		}
		if e != nil {
			mlog.Errorf("check_timers: %v", e)
			err = multierr.Append(err, e)
		}
	}
	return
}
