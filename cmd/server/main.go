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
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/api/handler"
	"github.com/maikostudios/SustentaM-sub001/internal/api/router"
	"github.com/maikostudios/SustentaM-sub001/internal/jobs"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/database"
	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
	applogger "github.com/maikostudios/SustentaM-sub001/pkg/logger"
	"github.com/maikostudios/SustentaM-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

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
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并准备表结构
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	if err := database.Migrate(db, cfg.Database.Driver, logger,
		&model.User{}, &model.Course{}, &model.Session{}, &model.Seat{}, &model.Participant{},
	); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(svc)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.BootstrapAdmin(bootCtx); err != nil {
		logger.Error("初始化管理员失败", zap.Error(err))
	}
	bootCancel()

	// 7. 定时任务：次日场次提醒
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		loc, err := time.LoadLocation(cfg.Jobs.Timezone)
		if err != nil {
			logger.Warn("定时任务时区无效，使用 UTC", zap.String("timezone", cfg.Jobs.Timezone), zap.Error(err))
			loc = time.UTC
		}
		scheduler, err = jobs.NewScheduler(cfg.Jobs.DigestCron, loc, jobs.NewDigest(repo, loc, logger), logger)
		if err != nil {
			logger.Fatal("定时任务初始化失败", zap.Error(err))
		}
		scheduler.Start()
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 批量证书打包耗时较长
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop(ctx)
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
