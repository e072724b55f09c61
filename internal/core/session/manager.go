package session

import (
	"context"
	"sync"
	"time"

	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// swapKey 進行中的替換以 (session, 天數, 位置) 區分
type swapKey struct {
	id    string
	day   int
	index int
}

// 生成結果寫回儲存的期限，與請求本身的期限無關
const applyTimeout = 10 * time.Second

// sessionLock 只在有人持有或等待時存在
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Manager 每個 session 持有一個精靈狀態；轉換依 session 序列化，
// 生成服務呼叫期間不持有鎖，完成時套用到當下的狀態
type Manager struct {
	store   Store
	planner wizard.Planner

	mu         sync.Mutex
	locks      map[string]*sessionLock
	generating map[string]struct{}
	swapping   map[swapKey]struct{}
}

// NewManager 創建 session 管理器
func NewManager(store Store, planner wizard.Planner) *Manager {
	return &Manager{
		store:      store,
		planner:    planner,
		locks:      make(map[string]*sessionLock),
		generating: make(map[string]struct{}),
		swapping:   make(map[swapKey]struct{}),
	}
}

// lock 取得 session 鎖；最後一個持有者釋放時移除該項
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// applyContext 寫回生成結果用的 context，不受請求取消影響
func applyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), applyTimeout)
}

// Create 建立新的精靈 session
func (m *Manager) Create(ctx context.Context) (string, *wizard.State, error) {
	id := common.GenerateUUID()
	state := wizard.New()
	if err := m.store.Save(ctx, id, state); err != nil {
		return "", nil, err
	}
	common.LogInfo("Session 已建立", zap.String("session_id", id))
	return id, state, nil
}

// Get 讀取目前狀態
func (m *Manager) Get(ctx context.Context, id string) (*wizard.State, error) {
	return m.store.Get(ctx, id)
}

// Delete 放棄 session
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	err := m.store.Delete(ctx, id)
	unlock()
	if err == nil {
		common.LogInfo("Session 已刪除", zap.String("session_id", id))
	}
	return err
}

// Update 在 session 鎖內執行同步轉換，fn 回傳錯誤時不寫回
func (m *Manager) Update(ctx context.Context, id string, fn func(*wizard.State) error) (*wizard.State, error) {
	unlock := m.lock(id)
	defer unlock()

	state, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Submit 從食材步驟提交並等待生成結果
func (m *Manager) Submit(ctx context.Context, id string, constraint *mealplan.Optimization) (*wizard.State, error) {
	return m.generate(ctx, id, constraint, (*wizard.State).PrepareSubmit)
}

// Regenerate 在結果頁以新的條件重新生成
func (m *Manager) Regenerate(ctx context.Context, id string, constraint *mealplan.Optimization) (*wizard.State, error) {
	return m.generate(ctx, id, constraint, (*wizard.State).PrepareRegenerate)
}

func (m *Manager) generate(ctx context.Context, id string, constraint *mealplan.Optimization, prepare func(*wizard.State) (mealplan.Preferences, error)) (*wizard.State, error) {
	var prefs mealplan.Preferences
	err := m.withLock(ctx, id, func(state *wizard.State) error {
		p, err := prepare(state)
		if err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, busy := m.generating[id]; busy {
			return ErrGenerationInFlight
		}
		m.generating[id] = struct{}{}
		prefs = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		m.mu.Lock()
		delete(m.generating, id)
		m.mu.Unlock()
	}()

	start := time.Now()
	plan, err := wizard.Generate(context.WithoutCancel(ctx), m.planner, prefs, constraint)
	if err != nil {
		common.LogWarn("計畫生成失敗",
			zap.String("session_id", id),
			zap.Duration("耗時", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	applyCtx, cancel := applyContext(ctx)
	defer cancel()
	return m.Update(applyCtx, id, func(state *wizard.State) error {
		// 使用者在等待期間離開結果頁時，最新的計畫仍然生效
		if state.Step == wizard.StepResult {
			state.ApplyRegenerated(plan, constraint)
		} else {
			state.ApplyPlan(plan, constraint)
		}
		return nil
	})
}

// Swap 替換目前天數的一道餐點；同一位置已有替換進行中時拒絕
func (m *Manager) Swap(ctx context.Context, id string, kind wizard.SwapKind, index int) (*wizard.State, error) {
	var ticket *wizard.SwapTicket
	var key swapKey
	err := m.withLock(ctx, id, func(state *wizard.State) error {
		t, err := state.PrepareSwap(kind, index)
		if err != nil {
			return err
		}
		key = swapKey{id: id, day: t.Day, index: t.Index}
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, busy := m.swapping[key]; busy {
			return ErrSwapInFlight
		}
		m.swapping[key] = struct{}{}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		m.mu.Lock()
		delete(m.swapping, key)
		m.mu.Unlock()
	}()

	meal, err := wizard.RunSwap(context.WithoutCancel(ctx), m.planner, ticket)
	if err != nil {
		common.LogWarn("餐點替換失敗", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	applyCtx, cancel := applyContext(ctx)
	defer cancel()
	return m.Update(applyCtx, id, func(state *wizard.State) error {
		if state.ApplySwap(ticket, meal) {
			return nil
		}
		common.LogDebug("替換結果已捨棄", zap.String("session_id", id), zap.Int("day", ticket.Day), zap.Int("index", ticket.Index))
		if state.Plan == nil {
			return wizard.ErrNoPlan
		}
		return wizard.ErrMealNotFound
	})
}

// withLock 在 session 鎖內讀取狀態但不寫回
func (m *Manager) withLock(ctx context.Context, id string, fn func(*wizard.State) error) error {
	unlock := m.lock(id)
	defer unlock()

	state, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return fn(state)
}

// Stats 回傳儲存統計，儲存不提供時為 nil
func (m *Manager) Stats() map[string]interface{} {
	if s, ok := m.store.(interface{ GetStats() map[string]interface{} }); ok {
		return s.GetStats()
	}
	return nil
}

// Ping 檢查儲存是否可用
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Close 關閉儲存
func (m *Manager) Close() error {
	return m.store.Close()
}
