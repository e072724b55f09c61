package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bachat-planner/internal/api"
	"bachat-planner/internal/core/ai/queue"
	"bachat-planner/internal/core/ai/service"
	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/session"
	"bachat-planner/internal/infrastructure/config"
	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("api_key", config.MaskAPIKey(cfg.ActiveAPIKey())),
		zap.String("session_store", cfg.Session.Store),
	)

	ctx := context.Background()

	// 初始化模型供應商
	provider, err := service.NewProvider(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI provider", zap.Error(err))
	}
	aiQueue := queue.NewManager(cfg.Queue.Workers, cfg.Queue.MaxSize)
	aiService := service.NewService(provider, cfg.AI.Temperature, service.WithQueue(aiQueue))
	defer aiService.Close()

	// 初始化 session 儲存
	store, err := newStore(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	sessions := session.NewManager(store, mealplan.NewPlannerService(aiService))
	defer sessions.Close()

	loc, err := cfg.Calendar.Location()
	if err != nil {
		common.LogFatal("Invalid calendar timezone", zap.Error(err))
	}

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Sessions: sessions,
		Deriver:  schedule.NewDeriver(loc, time.Now),
		Model:    aiService.Model(),
		Queue:    aiService,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// newStore 依設定選擇 session 儲存
func newStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return session.NewRedisStore(pingCtx, cfg.Redis, cfg.Session.TTL)
	default:
		return session.NewMemoryStore(cfg.Session.TTL, cfg.Session.MaxSize, cfg.Session.CleanupInterval), nil
	}
}
