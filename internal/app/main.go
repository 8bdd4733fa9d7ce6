package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/logger"
)

// Main 命令行入口共用：加载配置、按顺序执行 phases，返回进程退出码
func Main(service string, phases ...string) int {
	log := logger.New(service)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config failed", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("init failed", "err", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", "err", err)
		}
	}()

	if err := a.RunPhases(ctx, phases...); err != nil {
		log.Error("run failed", "err", err)
		return 1
	}
	log.Info("all phases done", "phases", phases)
	return 0
}
