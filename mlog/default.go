package mlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions 文件日志配置, 切割交给lumberjack
type FileOptions struct {
	Path       string // 目录, 默认当前目录
	Name       string // 文件名, 不含后缀
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type loggerImp struct {
	out    *lumberjack.Logger
	ll     *log.Logger
	buff   chan string
	level  Level
	stdOut bool
}

func newDefaultLogger(opt FileOptions, level Level, stdOut bool) (*loggerImp, error) {
	if len(opt.Path) == 0 {
		opt.Path = "."
	}
	if opt.MaxSizeMB <= 0 {
		opt.MaxSizeMB = 100
	}
	if err := os.MkdirAll(opt.Path, 0755); err != nil {
		return nil, err
	}
	out := &lumberjack.Logger{
		Filename:   filepath.Join(opt.Path, genLogName(opt.Name)),
		MaxSize:    opt.MaxSizeMB,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAgeDays,
		Compress:   opt.Compress,
	}
	if stdOut {
		log.SetFlags(log.Ldate | log.Lmicroseconds)
	}
	return &loggerImp{
		out:    out,
		ll:     log.New(out, "", log.Ldate|log.Lmicroseconds),
		buff:   make(chan string, 0x10000),
		level:  level,
		stdOut: stdOut,
	}, nil
}

func (me *loggerImp) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("log recover error %v\n", r)
			}
			me.out.Close()
			wg.Done()
		}()

		for {
			select {
			case <-ctx.Done():
				// 刷完剩余日志
				for {
					select {
					case str := <-me.buff:
						me.write(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.write(str)
			}
		}
	}()
}

func (me *loggerImp) write(str string) {
	if me.stdOut {
		log.Println(str)
	}
	me.ll.Println(str)
}

func (me *loggerImp) push(level Level, msg string) {
	me.buff <- getLevelTag(level) + msg
}

func (me *loggerImp) Trace(args ...interface{}) {
	if me.IsLevelEnabled(TraceLevel) {
		me.push(TraceLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Tracef(format string, args ...interface{}) {
	if me.IsLevelEnabled(TraceLevel) {
		me.push(TraceLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Debug(args ...interface{}) {
	if me.IsLevelEnabled(DebugLevel) {
		me.push(DebugLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Debugf(format string, args ...interface{}) {
	if me.IsLevelEnabled(DebugLevel) {
		me.push(DebugLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Info(args ...interface{}) {
	if me.IsLevelEnabled(InfoLevel) {
		me.push(InfoLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Infof(format string, args ...interface{}) {
	if me.IsLevelEnabled(InfoLevel) {
		me.push(InfoLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Warn(args ...interface{}) {
	if me.IsLevelEnabled(WarnLevel) {
		me.push(WarnLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Warnf(format string, args ...interface{}) {
	if me.IsLevelEnabled(WarnLevel) {
		me.push(WarnLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Error(args ...interface{}) {
	if me.IsLevelEnabled(ErrorLevel) {
		me.push(ErrorLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Errorf(format string, args ...interface{}) {
	if me.IsLevelEnabled(ErrorLevel) {
		me.push(ErrorLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Fatal(args ...interface{}) {
	me.push(FatalLevel, fmt.Sprint(args...))
	time.Sleep(time.Second)
	os.Exit(1)
}

func (me *loggerImp) Fatalf(format string, args ...interface{}) {
	me.push(FatalLevel, fmt.Sprintf(format, args...))
	time.Sleep(time.Second)
	os.Exit(1)
}

func (me *loggerImp) IsLevelEnabled(level Level) bool {
	return me.level >= level
}

func genLogName(logName string) string {
	if logName == "" {
		logName = "polltimer"
	}
	return logName + ".log"
}
