package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/config"
	"github.com/ashwinyue/next-fans/internal/database"
	"github.com/ashwinyue/next-fans/internal/handler"
	"github.com/ashwinyue/next-fans/internal/logger"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/router"
	"github.com/ashwinyue/next-fans/internal/scheduler"
	"github.com/ashwinyue/next-fans/internal/service"
)

func main() {
	// .env 可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server exited with error", zap.Error(err))
	}
	zl.Info("Server exited")
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化数据库
	db, err := database.New(cfg, zl.Named("gorm"))
	if err != nil {
		return err
	}
	defer db.Close()
	zl.Info("Database connected", zap.String("dbname", cfg.Database.DBName))

	// 初始化 Redis，未配置时 AI 配额使用数据库计数
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}
		zl.Info("Redis connected", zap.String("addr", cfg.Redis.GetAddr()))
	}

	// 初始化各层
	repos := repository.NewRepositories(db.DB)
	services, err := service.NewServices(ctx, repos, cfg, redisClient, zl)
	if err != nil {
		return err
	}
	handlers := handler.NewHandlers(services)

	// 定时任务
	sched, err := scheduler.New(zl)
	if err != nil {
		return err
	}
	if err := sched.ScheduleTierRecalculation(cfg.Scheduler.TierRecalcCron, services.Fan); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			zl.Error("Failed to stop scheduler", zap.Error(err))
		}
	}()

	// 初始化路由
	r := router.SetupRouter(cfg, services, handlers, db, zl)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		zl.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	zl.Info("Shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
