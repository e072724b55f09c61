package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bachat-planner/internal/pkg/common"
)

// requestCache 最近的 POST 請求指紋
type requestCache struct {
	sync.Mutex
	requests map[string]time.Time
}

// prune 清除超過 10 倍視窗的指紋
func (rc *requestCache) prune(now time.Time, window time.Duration) {
	rc.Lock()
	defer rc.Unlock()
	for k, t := range rc.requests {
		if now.Sub(t) > 10*window {
			delete(rc.requests, k)
		}
	}
}

// Deduplication 拒絕視窗內重複的 POST 請求（同一客戶端、路徑與請求體）；window 為 0 時停用
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cache := &requestCache{requests: make(map[string]time.Time)}
	lastPrune := time.Now()

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Code:    "REQUEST_TOO_LARGE",
					Message: "Request body too large",
				})
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + bodyHash

		now := time.Now()
		cache.Lock()
		if now.Sub(lastPrune) > 10*window {
			lastPrune = now
			cache.Unlock()
			cache.prune(now, window)
			cache.Lock()
		}
		if last, exists := cache.requests[fingerprint]; exists && now.Sub(last) <= window {
			cache.Unlock()
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}
		cache.requests[fingerprint] = now
		cache.Unlock()

		c.Next()
	}
}
