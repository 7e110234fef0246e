package main

import (
	"context"
	"os"
	"time"

	"github.com/fixkme/polltimer/action"
	"github.com/fixkme/polltimer/clock"
	"github.com/fixkme/polltimer/framework/config"
	"github.com/fixkme/polltimer/mlog"
	"github.com/fixkme/polltimer/timer"
	"github.com/redis/go-redis/v9"
)

const defaultChannel = "polltimer"

// pollModule 宿主主循环, 所有定时器操作都在Run所在的协程里
type pollModule struct {
	conf *config.AppConfig
	reg  *timer.Registry
	rdb  redis.UniversalClient
}

func newPollModule(conf *config.AppConfig) *pollModule {
	return &pollModule{conf: conf}
}

func (m *pollModule) Name() string {
	return "poll"
}

func (m *pollModule) OnInit() error {
	var opts []clock.Option
	if m.conf.ShortRollover > 0 {
		opts = append(opts, clock.WithRollover(m.conf.ShortRollover))
	}
	if m.conf.NoShortClock {
		opts = append(opts, clock.WithoutShort())
	}
	src := clock.NewSystem(opts...)
	src.SetTimeOffset(time.Duration(m.conf.TimeOffsetSec) * time.Second)

	tab := action.NewTable()
	m.reg = timer.NewRegistry(src, tab)
	registerExamples(tab, m.reg)

	if m.conf.RedisAddr != "" {
		rdb, err := newRedis(&m.conf.RedisConfig)
		if err != nil {
			return err
		}
		m.rdb = rdb
		channel := m.conf.RedisChannel
		if channel == "" {
			channel = defaultChannel
		}
		tab.Register("redis", "publish", action.Publish(m.rdb, channel))
	}

	if len(m.conf.Timers) == 0 {
		return setupExampleTimers(m.reg)
	}
	return m.conf.SetupTimers(m.reg)
}

func (m *pollModule) Run(ctx context.Context) {
	m.reg.ShowTimers(os.Stdout)
	interval := time.Duration(m.conf.PollIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// 进程被挂起过, 重新对齐到期时间
			if gap := now.Sub(last); gap > 100*interval {
				mlog.Warnf("poll loop stalled for %v", gap)
				m.reg.ForceRestart()
			}
			last = now
			if _, err := m.reg.CheckTimers(); err != nil {
				mlog.Warnf("check timers: %v", err)
			}
		}
	}
}

func (m *pollModule) Destroy() {
	if m.reg != nil {
		m.reg.ShowTimers(os.Stdout)
	}
	if m.rdb != nil {
		m.rdb.Close()
	}
}
