package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bachat-planner/internal/core/wizard"
)

var (
	// ErrNotFound session 不存在或已過期
	ErrNotFound = errors.New("session not found")
	// ErrStoreFull 記憶體儲存已達上限且無法淘汰
	ErrStoreFull = errors.New("session store is full")
	// ErrSwapInFlight 同一餐點已有替換進行中
	ErrSwapInFlight = errors.New("swap already in flight for this meal")
	// ErrGenerationInFlight 同一 session 已有生成進行中
	ErrGenerationInFlight = errors.New("plan generation already in flight")
)

// Store 精靈狀態儲存
type Store interface {
	Get(ctx context.Context, id string) (*wizard.State, error)
	Save(ctx context.Context, id string, state *wizard.State) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

func encodeState(state *wizard.State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*wizard.State, error) {
	var state wizard.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &state, nil
}
