package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/fixkme/polltimer/mlog"
)

// 进程状态
const (
	AppStateNone = iota // 未开始或已停止
	AppStateInit        // 正在初始化中
	AppStateRun         // 正在运行中
	AppStateStop        // 正在停止中
)

// Module 宿主中的一个模块, Run 阻塞直到ctx结束
type Module interface {
	OnInit() error
	Run(ctx context.Context)
	Destroy()
	Name() string
}

type App struct {
	mods   []Module
	state  int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sig    chan os.Signal
}

func New() *App {
	return &App{sig: make(chan os.Signal, 1)}
}

func (app *App) setState(s int32) {
	atomic.StoreInt32(&app.state, s)
}

func (app *App) GetState() int32 {
	return atomic.LoadInt32(&app.state)
}

// Start 初始化并启动所有模块, 初始化失败时已初始化的模块按逆序销毁
func (app *App) Start(ctx context.Context, mods ...Module) error {
	if app.GetState() != AppStateNone {
		return fmt.Errorf("app cannot start twice")
	}
	app.setState(AppStateInit)
	for i, m := range mods {
		if err := m.OnInit(); err != nil {
			for j := i - 1; j >= 0; j-- {
				destroy(mods[j])
			}
			app.setState(AppStateNone)
			return fmt.Errorf("module %s init: %w", m.Name(), err)
		}
	}
	app.mods = mods
	ctx, app.cancel = context.WithCancel(ctx)
	for _, m := range app.mods {
		app.wg.Add(1)
		go func(m Module) {
			defer app.wg.Done()
			m.Run(ctx)
		}(m)
	}
	app.setState(AppStateRun)
	mlog.Info("app started")
	return nil
}

// Stop 停止所有模块, 先进后出
func (app *App) Stop() {
	if app.GetState() != AppStateRun {
		return
	}
	mlog.Info("app stop begin")
	app.setState(AppStateStop)
	app.cancel()
	app.wg.Wait()
	for i := len(app.mods) - 1; i >= 0; i-- {
		mlog.Infof("app stop module %s", app.mods[i].Name())
		destroy(app.mods[i])
	}
	app.setState(AppStateNone)
	mlog.Info("app stopped")
}

func destroy(m Module) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("%s module destroy panic: %v\n%s", m.Name(), r, debug.Stack())
		}
	}()
	m.Destroy()
}

// Run 启动后等待信号退出, SIGHUP忽略
func (app *App) Run(ctx context.Context, mods ...Module) error {
	if err := app.Start(ctx, mods...); err != nil {
		return err
	}
	signal.Notify(app.sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(app.sig)
	for {
		sig := <-app.sig
		mlog.Infof("closing down (signal: %v)", sig)
		if sig != syscall.SIGHUP {
			break
		}
	}
	app.Stop()
	return nil
}

// Shutdown 让Run退出
func (app *App) Shutdown() {
	select {
	case app.sig <- syscall.SIGTERM:
	default:
	}
}
