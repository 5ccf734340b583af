// dispatch 对当前业务日尚未上报的收容所发起一轮外呼后退出，供 cron 调用。
// 仍有收容所未联系时退出码为 2，拨号失败时为 1。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/repository"
	"shelter-caller/internal/service"
	"shelter-caller/internal/telephony"
	"shelter-caller/pkg/database"
	applogger "shelter-caller/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（yaml），为空时只读环境变量")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log, "dispatch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, logger))
}

func run(cfg *config.Config, logger *zap.Logger) int {
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Error("数据库连接失败", zap.Error(err))
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("获取底层 sql.DB 失败", zap.Error(err))
		return 1
	}
	defer sqlDB.Close()

	var caller telephony.Caller = telephony.NoopCaller{Logger: logger}
	if cfg.Telephony.Enabled() {
		caller = telephony.NewClient(&cfg.Telephony, logger)
	}

	svc := service.NewService(service.Deps{
		Config: cfg,
		Repo:   repository.NewRepository(db, logger),
		Caller: caller,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.Dispatch.StartCalls(ctx)
	if err != nil {
		logger.Error("外呼失败", zap.Error(err))
		return 1
	}

	logger.Info("本轮外呼结束",
		zap.String("business_day", result.BusinessDay),
		zap.Int("selected", result.Selected),
		zap.Int("dialed", result.Dialed),
		zap.Int("failed", result.Failed),
		zap.Bool("caught_up", result.CaughtUp),
	)

	switch {
	case result.Failed > 0:
		return 1
	case !result.CaughtUp:
		return 2
	default:
		return 0
	}
}
