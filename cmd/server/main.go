package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"equipcare/backend/config"
	"equipcare/backend/internal/api/handler"
	"equipcare/backend/internal/api/router"
	"equipcare/backend/internal/model"
	"equipcare/backend/internal/notify"
	"equipcare/backend/internal/repository"
	"equipcare/backend/internal/service"
	"equipcare/backend/pkg/database"
	applogger "equipcare/backend/pkg/logger"
	"equipcare/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，每日发送去重不可用）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，邮件每日发送去重将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 依赖注入: Repository → Service → Notify → Scheduler → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger)

	emailDispatcher := notify.NewSMTPDispatcher(&cfg.Mail, svc.Setting, logger)
	pushDispatcher := notify.NewWebPushDispatcher(&cfg.Push, repo.PushSubscription, logger)

	emailScheduler := service.NewEmailReminderScheduler(
		svc.Setting, repo, svc.Bucketer, emailDispatcher, svc.Audit, rdb,
		time.Duration(cfg.Reminder.EmailInitialDelaySeconds)*time.Second, logger)
	pushScheduler := service.NewPushReminderScheduler(
		svc.Setting, repo, svc.Bucketer, pushDispatcher, svc.Audit,
		cfg.Reminder.DaysAhead,
		time.Duration(cfg.Reminder.PushInitialDelaySeconds)*time.Second, logger)

	h := handler.NewHandler(svc, emailScheduler, pushScheduler)

	// 6. 启动时刷新一遍全库状态（缓存状态随日期推移会过期）
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if _, err := svc.Equipment.RefreshAllStatuses(startupCtx); err != nil {
		logger.Warn("启动状态刷新失败，等待下次手动触发", zap.Error(err))
	}
	startupCancel()

	svc.Audit.Log(context.Background(), model.AuditSystemStartup, "System",
		"系统启动", model.AuditStatusInfo, nil)

	// 7. 启动两条提醒调度循环（错峰启动，见 initial_delay 配置）
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	go emailScheduler.RunLoop(schedulerCtx)
	go pushScheduler.RunLoop(schedulerCtx)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	// 先停调度循环，再关 HTTP
	emailScheduler.Stop()
	pushScheduler.Stop()
	schedulerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
