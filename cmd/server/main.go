package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/api/handler"
	"shelter-caller/internal/api/router"
	"shelter-caller/internal/authz"
	"shelter-caller/internal/repository"
	"shelter-caller/internal/service"
	"shelter-caller/internal/telephony"
	"shelter-caller/pkg/database"
	"shelter-caller/pkg/jwt"
	applogger "shelter-caller/pkg/logger"
	"shelter-caller/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（yaml），为空时只读环境变量")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("telephony_enabled", cfg.Telephony.Enabled()),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时不限流、不支持注销）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流与 Token 黑名单不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 授权与外呼
	authorizer, err := authz.NewAuthorizer()
	if err != nil {
		logger.Fatal("加载授权策略失败", zap.Error(err))
	}
	var caller telephony.Caller = telephony.NoopCaller{Logger: logger}
	if cfg.Telephony.Enabled() {
		caller = telephony.NewClient(&cfg.Telephony, logger)
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db, logger)
	svc := service.NewService(service.Deps{
		Config:     cfg,
		Repo:       repo,
		JWT:        jwtMgr,
		Redis:      rdb,
		Authorizer: authorizer,
		Caller:     caller,
		Logger:     logger,
	})

	if err := svc.Auth.EnsureAdmin(context.Background(), cfg.Auth.BootstrapAdmin, cfg.Auth.BootstrapPassword); err != nil {
		logger.Fatal("初始化管理员失败", zap.Error(err))
	}
	// 偏好行首次启动时按配置默认值创建
	if _, err := svc.Preference.Settings(context.Background()); err != nil {
		logger.Fatal("偏好设置无效", zap.Error(err))
	}

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验器失败", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, authorizer, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	// WriteTimeout 需覆盖一轮外呼（start_call 等待全部拨号返回）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
