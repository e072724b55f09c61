package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 等待中的請求已達上限
	ErrQueueFull = errors.New("queue is full")
	// ErrClosed 隊列已關閉
	ErrClosed = errors.New("queue manager is closed")
)

// Status 隊列狀態
type Status struct {
	InFlight       int `json:"in_flight"`
	Waiting        int `json:"waiting"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 限制同時進行的模型呼叫數，超過的請求排隊等待
type Manager struct {
	workers   int
	maxSize   int
	slots     chan struct{}
	done      chan struct{}
	once      sync.Once
	waiting   int64
	processed int64
}

// NewManager 創建新的隊列管理器
func NewManager(workers, maxSize int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		workers: workers,
		maxSize: maxSize,
		slots:   make(chan struct{}, workers),
		done:    make(chan struct{}),
	}
}

// Acquire 取得一個執行名額，回傳的 release 必須呼叫一次
func (m *Manager) Acquire(ctx context.Context) (func(), error) {
	if n := atomic.AddInt64(&m.waiting, 1); m.maxSize > 0 && n > int64(m.maxSize) {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("AI queue is full",
			zap.Int("max_queue_size", m.maxSize),
			zap.Int("workers", m.workers),
		)
		return nil, ErrQueueFull
	}
	defer atomic.AddInt64(&m.waiting, -1)

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	select {
	case m.slots <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-m.slots
				atomic.AddInt64(&m.processed, 1)
			})
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		InFlight:       len(m.slots),
		Waiting:        int(atomic.LoadInt64(&m.waiting)),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 關閉隊列，等待中的請求回傳 ErrClosed
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}
