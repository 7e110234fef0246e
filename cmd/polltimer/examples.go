package main

import (
	"math"

	"github.com/fixkme/polltimer/action"
	"github.com/fixkme/polltimer/mlog"
	"github.com/fixkme/polltimer/timer"
)

const exampleLib = "example_util"

// untilNextMinute 距下一个整分钟的秒数
func untilNextMinute(now float64) float64 {
	return 60 - math.Mod(now, 60)
}

func registerExamples(tab *action.Table, reg *timer.Registry) {
	tab.RegisterFunc(exampleLib, "fire_one_shot", func() {
		mlog.Info("one shot timer fired")
	})
	tab.Register(exampleLib, "fire_repeating", func(...any) error {
		mlog.Info("repeating timer fired")
		return reg.StartTimer("repeating")
	})
	tab.Register(exampleLib, "mark_minute", func(...any) error {
		mlog.Info("a new minute has turned over")
		return reg.OverrideTimerExpiration("minute", untilNextMinute(reg.Clock().NowLong()))
	})
	tab.Register(exampleLib, "fire_flipflop_A", func(...any) error {
		mlog.Info("flipflop timer A fires")
		return reg.StartTimer("flipflop_B")
	})
	tab.Register(exampleLib, "fire_flipflop_B", func(...any) error {
		mlog.Info("flipflop timer B fires")
		return reg.StartTimer("flipflop_A")
	})
	tab.Register(exampleLib, "say", func(args ...any) error {
		mlog.Info(args...)
		return nil
	})
}

// setupExampleTimers 没有配置定时器时使用的演示定时器
func setupExampleTimers(reg *timer.Registry) error {
	defs := []struct {
		name string
		def  *timer.Definition
	}{
		{"one_shot", &timer.Definition{Action: "fire_one_shot", Library: exampleLib, Long: true, Interval: timer.Float(3), IsSet: true}},
		{"repeating", &timer.Definition{Action: "fire_repeating", Library: exampleLib, Interval: timer.Float(1500), IsSet: true}},
		{"minute", &timer.Definition{Action: "mark_minute", Library: exampleLib, Long: true, Interval: timer.Float(60)}},
		{"flipflop_A", &timer.Definition{Action: "fire_flipflop_A", Library: exampleLib, Long: true, Interval: timer.Float(2), IsSet: true}},
		{"flipflop_B", &timer.Definition{Action: "fire_flipflop_B", Library: exampleLib, Long: true, Interval: timer.Float(2)}},
	}
	for _, d := range defs {
		if err := reg.SetupTimer(d.name, d.def); err != nil {
			return err
		}
	}
	return reg.OverrideTimerExpiration("minute", untilNextMinute(reg.Clock().NowLong()))
}
