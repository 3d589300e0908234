package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/api/handler"
	"github.com/Nisheeka1604/yultimate/internal/api/router"
	"github.com/Nisheeka1604/yultimate/internal/jobs"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/database"
	"github.com/Nisheeka1604/yultimate/pkg/jwt"
	applogger "github.com/Nisheeka1604/yultimate/pkg/logger"
	"github.com/Nisheeka1604/yultimate/pkg/observability"
	"github.com/Nisheeka1604/yultimate/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config/config.yaml")
	flag.Parse()

	// 0. 本地开发时从 .env 注入环境变量，文件不存在不报错
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("environment", cfg.Observability.Environment),
	)

	// 2.1 错误上报（未配置 DSN 时不启用）
	flushSentry, err := observability.InitSentry(cfg.Observability.SentryDSN, cfg.Observability.Environment, cfg.Observability.Release)
	if err != nil {
		logger.Warn("Sentry 初始化失败，错误上报不可用", zap.Error(err))
	}
	defer flushSentry()

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var deps service.Deps
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与排行榜缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Cache = rdb
		deps.Blacklist = rdb
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(svc)

	// 7. 后台任务：排行榜预热
	scheduler, err := jobs.NewScheduler(cfg.Engine.LeaderboardRefreshInterval, svc.Tournament, svc.Match, logger)
	if err != nil {
		logger.Fatal("后台任务初始化失败", zap.Error(err))
	}
	scheduler.Start()

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := scheduler.Shutdown(); err != nil {
		logger.Error("后台任务关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
