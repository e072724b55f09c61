package middleware

import (
	"fmt"
	"sync"
	"time"

	"bachat-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now)
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now(),
		now:      now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 添加新令牌
	rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)

	// 檢查是否有可用令牌
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	return false
}

// clientLimiters 依客戶端 IP 分開限流
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
	requests int
	window   time.Duration
}

func (l *clientLimiters) get(ip string) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		l.limiters[ip] = rl
	}
	return rl
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	clients := &clientLimiters{
		limiters: make(map[string]*RateLimiter),
		requests: requests,
		window:   window,
	}

	return func(c *gin.Context) {
		if !clients.get(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}
