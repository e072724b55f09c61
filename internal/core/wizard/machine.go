package wizard

import (
	"context"

	"bachat-planner/internal/core/mealplan"
)

// Planner 生成服務邊界
type Planner interface {
	GeneratePlan(ctx context.Context, prefs mealplan.Preferences, constraint *mealplan.Optimization) (*mealplan.Plan, error)
	SwapMeal(ctx context.Context, prefs mealplan.Preferences, meal *mealplan.Meal) (*mealplan.Meal, error)
	SuggestPantryOnlyMeal(ctx context.Context, prefs mealplan.Preferences, owned []string) (*mealplan.Meal, error)
}

// SwapKind 替換方式
type SwapKind string

const (
	SwapAlternative SwapKind = "swap"
	SwapZeroPrep    SwapKind = "zero-prep"
)

// SwapTicket 開始替換時擷取的資料，套用時據此定位餐點
type SwapTicket struct {
	Kind   SwapKind
	Day    int
	Index  int
	Meal   *mealplan.Meal
	Prefs  mealplan.Preferences
	Pantry []string
}

// PrepareSwap 驗證目前天數的餐點位置並擷取替換所需資料
func (s *State) PrepareSwap(kind SwapKind, index int) (*SwapTicket, error) {
	if s.Step != StepResult {
		return nil, ErrInvalidTransition
	}
	dp, err := s.ActiveDayPlan()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(dp.Meals) {
		return nil, ErrMealNotFound
	}

	t := &SwapTicket{
		Kind:  kind,
		Day:   dp.Day,
		Index: index,
		Meal:  dp.Meals[index],
		Prefs: s.Preferences.Clone(),
	}
	if kind == SwapZeroPrep {
		t.Pantry = s.Plan.PantryItems()
	}
	return t, nil
}

// ApplySwap 只替換該天該位置的餐點，其餘天數與餐點保持同一參照；
// 計畫已消失或位置不存在時回傳 false
func (s *State) ApplySwap(t *SwapTicket, meal *mealplan.Meal) bool {
	if s.Plan == nil || meal == nil {
		return false
	}
	idx := s.Plan.DayIndex(t.Day)
	if idx < 0 || t.Index >= len(s.Plan.DailyPlans[idx].Meals) {
		return false
	}

	old := s.Plan.DailyPlans[idx]
	meals := make([]*mealplan.Meal, len(old.Meals))
	copy(meals, old.Meals)
	meals[t.Index] = meal

	days := make([]*mealplan.DayPlan, len(s.Plan.DailyPlans))
	copy(days, s.Plan.DailyPlans)
	days[idx] = &mealplan.DayPlan{Day: old.Day, Meals: meals}

	plan := *s.Plan
	plan.DailyPlans = days
	s.Plan = &plan
	return true
}

// Generate 呼叫生成服務，失敗包成 GenerationError
func Generate(ctx context.Context, planner Planner, prefs mealplan.Preferences, constraint *mealplan.Optimization) (*mealplan.Plan, error) {
	plan, err := planner.GeneratePlan(ctx, prefs, constraint)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if plan == nil {
		return nil, &GenerationError{Err: mealplan.ErrIncompletePlan}
	}
	return plan, nil
}

// RunSwap 依票據呼叫對應的替換服務，失敗包成 SwapError
func RunSwap(ctx context.Context, planner Planner, t *SwapTicket) (*mealplan.Meal, error) {
	var (
		meal *mealplan.Meal
		err  error
	)
	switch t.Kind {
	case SwapZeroPrep:
		meal, err = planner.SuggestPantryOnlyMeal(ctx, t.Prefs, t.Pantry)
	default:
		meal, err = planner.SwapMeal(ctx, t.Prefs, t.Meal)
	}
	if err == nil && meal == nil {
		err = mealplan.ErrIncompleteMeal
	}
	if err != nil {
		return nil, &SwapError{Kind: t.Kind, Day: t.Day, Index: t.Index, Err: err}
	}
	return meal, nil
}

// Machine 單一擁有者的同步精靈，直接在呼叫端等待生成服務
type Machine struct {
	State   *State
	planner Planner
}

// NewMachine 建立新的精靈
func NewMachine(planner Planner) *Machine {
	return &Machine{State: New(), planner: planner}
}

// Submit 從食材步驟提交，成功後進入結果頁
func (m *Machine) Submit(ctx context.Context, constraint *mealplan.Optimization) error {
	prefs, err := m.State.PrepareSubmit()
	if err != nil {
		return err
	}
	plan, err := Generate(ctx, m.planner, prefs, constraint)
	if err != nil {
		return err
	}
	m.State.ApplyPlan(plan, constraint)
	return nil
}

// Regenerate 在結果頁以新的條件重新生成
func (m *Machine) Regenerate(ctx context.Context, constraint *mealplan.Optimization) error {
	prefs, err := m.State.PrepareRegenerate()
	if err != nil {
		return err
	}
	plan, err := Generate(ctx, m.planner, prefs, constraint)
	if err != nil {
		return err
	}
	m.State.ApplyRegenerated(plan, constraint)
	return nil
}

// SwapMeal 替換目前天數的一道餐點
func (m *Machine) SwapMeal(ctx context.Context, index int) error {
	return m.swap(ctx, SwapAlternative, index)
}

// ZeroPrepSwap 以現有食材替換目前天數的一道餐點
func (m *Machine) ZeroPrepSwap(ctx context.Context, index int) error {
	return m.swap(ctx, SwapZeroPrep, index)
}

func (m *Machine) swap(ctx context.Context, kind SwapKind, index int) error {
	t, err := m.State.PrepareSwap(kind, index)
	if err != nil {
		return err
	}
	meal, err := RunSwap(ctx, m.planner, t)
	if err != nil {
		return err
	}
	m.State.ApplySwap(t, meal)
	return nil
}
