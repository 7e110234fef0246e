package main

import (
	"context"
	"flag"
	"log"
	"sync"

	"github.com/fixkme/polltimer/framework/app"
	"github.com/fixkme/polltimer/framework/config"
	"github.com/fixkme/polltimer/mlog"
)

func main() {
	confFile := flag.String("config", "", "json or yaml config file")
	flag.Parse()

	conf, err := config.LoadConfig(*confFile, nil)
	if err != nil {
		log.Fatalf("load config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	level := mlog.ParseLevel(conf.LogLevel)
	if conf.LogPath != "" || conf.LogName != "" {
		opt := mlog.FileOptions{
			Path:       conf.LogPath,
			Name:       conf.LogName,
			MaxSizeMB:  conf.LogMaxSizeMB,
			MaxBackups: conf.LogMaxBackups,
		}
		if err = mlog.UseDefaultLogger(ctx, wg, opt, level, conf.LogStdOut); err != nil {
			log.Fatalf("init log error: %v", err)
		}
	} else {
		mlog.UseStdLogger(level)
	}
	mlog.Debugf("config:\n%s", conf.JsonFormat())

	if err = app.New().Run(ctx, newPollModule(conf)); err != nil {
		mlog.Errorf("app run error: %v", err)
	}
	cancel()
	wg.Wait()
}
