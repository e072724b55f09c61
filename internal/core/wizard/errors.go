package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrStepIncomplete 目前步驟的條件尚未滿足
	ErrStepIncomplete = errors.New("current step is incomplete")
	// ErrInvalidTransition 目前步驟不允許此操作
	ErrInvalidTransition = errors.New("transition not allowed from current step")
	// ErrInsufficientInput 食材少於 MinIngredients，不呼叫生成服務
	ErrInsufficientInput = errors.New("add 5 ingredients to optimize")
	// ErrNoPlan 尚未有計畫
	ErrNoPlan = errors.New("no plan generated")
	// ErrMealNotFound 目前天數沒有該餐點位置
	ErrMealNotFound = errors.New("meal not found on active day")
	// ErrDayNotFound 計畫中沒有該天
	ErrDayNotFound = errors.New("day not found in plan")
	// ErrUnknownList 未知的食材清單名稱
	ErrUnknownList = errors.New("unknown ingredient list")
)

// GenerationError 生成計畫失敗，精靈停留在原步驟
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("plan generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SwapError 替換餐點失敗，原餐點不變
type SwapError struct {
	Kind  SwapKind
	Day   int
	Index int
	Err   error
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("%s failed for day %d meal %d: %v", e.Kind, e.Day, e.Index, e.Err)
}

func (e *SwapError) Unwrap() error {
	return e.Err
}
