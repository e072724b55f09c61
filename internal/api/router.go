package api

import (
	"time"

	"bachat-planner/internal/api/handlers/health"
	"bachat-planner/internal/api/handlers/planner"
	"bachat-planner/internal/api/middleware"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/session"
	"bachat-planner/internal/infrastructure/config"
	"bachat-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小預設限制 (1MB)
const defaultMaxBodySize = 1 << 20

// Dependencies 路由需要的服務
type Dependencies struct {
	Sessions *session.Manager
	Deriver  *schedule.Deriver
	Model    string
	Queue    health.QueueReporter
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBody))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Model, deps.Sessions, deps.Queue)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	h := planner.NewHandler(deps.Sessions, deps.Deriver, cfg.App.Debug)

	// API 路由組
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	// 重複提交防護只用在會呼叫模型的路由
	dedup := middleware.Deduplication(cfg.DedupWindow)
	{
		v1.GET("/options", h.GetOptions)
		v1.POST("/sessions", h.CreateSession)

		s := v1.Group("/sessions/:id")
		{
			s.GET("", h.GetSession)
			s.DELETE("", h.DeleteSession)
			s.PATCH("/preferences", h.UpdatePreferences)

			// 步驟轉換
			s.POST("/advance", h.Advance)
			s.POST("/retreat", h.Retreat)
			s.POST("/reset", h.Reset)

			// 食材清單
			s.POST("/ingredients/:list", h.AddIngredient)
			s.POST("/ingredients/:list/toggle", h.ToggleIngredient)
			s.DELETE("/ingredients/:list/:index", h.RemoveIngredient)
			s.DELETE("/ingredients/:list", h.RemoveLastIngredient)

			// 生成與結果頁
			s.POST("/submit", dedup, h.Submit)
			s.POST("/regenerate", dedup, h.Regenerate)
			s.PUT("/active-day", h.SetActiveDay)
			s.POST("/meals/:index/swap", dedup, h.SwapMeal)
			s.POST("/meals/:index/zero-prep", dedup, h.ZeroPrepSwap)

			// 匯出
			s.GET("/grocery", h.Grocery)
			s.GET("/calendar.ics", h.Calendar)
			s.GET("/calendar/link", h.CalendarLink)
			s.GET("/share", h.Share)
		}
	}

	common.LogInfo("Router setup completed",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBody),
	)

	return router
}
