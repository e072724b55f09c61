package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"bachat-planner/internal/core/ai/queue"
	"bachat-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter 回報模型呼叫隊列狀態
type QueueReporter interface {
	QueueStatus() *queue.Status
}

// StatsReporter 回報 session 儲存統計
type StatsReporter interface {
	Stats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     string                 `json:"model,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Sessions  map[string]interface{} `json:"sessions,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version string
	model   string
	store   Pinger
	queue   QueueReporter
}

// NewHandler 創建健康檢查處理程序，q 可為 nil
func NewHandler(version, model string, store Pinger, q QueueReporter) *Handler {
	return &Handler{version: version, model: model, store: store, queue: q}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Model:     h.model,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.queue != nil {
		response.Queue = h.queue.QueueStatus()
	}
	if r, ok := h.store.(StatsReporter); ok {
		response.Sessions = r.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，session 儲存無法連線時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("Session store not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
