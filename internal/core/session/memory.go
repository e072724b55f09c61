package session

import (
	"context"
	"sync"
	"time"

	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體 session 儲存，具 TTL 與 LRU 淘汰
type MemoryStore struct {
	mu      sync.RWMutex
	store   map[string]*memoryEntry
	stats   memoryStats
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// memoryEntry 儲存條目
type memoryEntry struct {
	data        []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 儲存統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewMemoryStore 創建記憶體儲存；cleanupInterval 為 0 時不啟動背景清理
func NewMemoryStore(ttl time.Duration, maxSize int, cleanupInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		store:   make(map[string]*memoryEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go m.startCleanup(cleanupInterval)
	}

	common.LogInfo("Session 記憶體儲存已初始化",
		zap.Int("最大容量", maxSize),
		zap.Duration("存活時間", ttl),
		zap.Duration("清理間隔", cleanupInterval),
	)

	return m
}

// Get 讀取 session，過期視為不存在
func (m *MemoryStore) Get(ctx context.Context, id string) (*wizard.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[id]
	if !ok {
		m.stats.misses++
		return nil, ErrNotFound
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("Session 已過期", zap.String("session_id", id))
		return nil, ErrNotFound
	}

	entry.lastAccess = now
	entry.accessCount++
	m.stats.hits++

	return decodeState(entry.data)
}

// Save 寫入 session 並重設存活時間
func (m *MemoryStore) Save(ctx context.Context, id string, state *wizard.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, ok := m.store[id]; ok {
		entry.data = data
		entry.expiresAt = now.Add(m.ttl)
		entry.lastAccess = now
		return nil
	}

	// 檢查容量
	if len(m.store) >= m.maxSize {
		evicted := m.cleanup()
		common.LogDebug("Session 清理執行", zap.Int("清理數量", evicted))

		// 如果仍然超過大小限制，執行 LRU 清理
		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.maxSize {
			m.stats.errors++
			common.LogWarn("Session 儲存已滿", zap.Int("目前容量", len(m.store)))
			return ErrStoreFull
		}
	}

	m.store[id] = &memoryEntry{
		data:       data,
		expiresAt:  now.Add(m.ttl),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// Delete 刪除 session
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// startCleanup 定期清理過期 session
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期條目，呼叫端需持有寫鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰最久未使用的 session
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time

	for key, entry := range m.store {
		if oldestKey == "" || entry.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.lastAccess
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("Session 已淘汰(LRU)", zap.String("session_id", oldestKey))
	}
}

// GetStats 獲取儲存統計信息
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
	}
}

// Close 停止清理並清空儲存
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*memoryEntry)
	common.LogInfo("Session 記憶體儲存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
