package wizard

import (
	"fmt"
	"strings"

	"bachat-planner/internal/core/mealplan"
)

// MinIngredients 產生計畫前至少需要的食材數
const MinIngredients = 5

// Step 問卷步驟
type Step int

const (
	StepPersona Step = iota
	StepDiet
	StepTime
	StepSetup
	StepCity
	StepEconomics
	StepScheduling
	StepIngredients
	StepResult
)

var stepNames = [...]string{
	StepPersona:     "persona",
	StepDiet:        "diet",
	StepTime:        "time",
	StepSetup:       "setup",
	StepCity:        "city",
	StepEconomics:   "economics",
	StepScheduling:  "scheduling",
	StepIngredients: "ingredients",
	StepResult:      "result",
}

func (s Step) String() string {
	if s < StepPersona || s > StepResult {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText 以名稱輸出步驟
func (s Step) MarshalText() ([]byte, error) {
	if s < StepPersona || s > StepResult {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

// UnmarshalText 由名稱解析步驟
func (s *Step) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", text)
}

// State 精靈狀態，只由轉換方法修改
type State struct {
	Step               Step                   `json:"step"`
	Preferences        mealplan.Preferences   `json:"preferences"`
	Plan               *mealplan.Plan         `json:"plan,omitempty"`
	ActiveDay          int                    `json:"activeDay"`
	ActiveOptimization *mealplan.Optimization `json:"activeOptimization,omitempty"`
}

// New 預設狀態
func New() *State {
	return &State{
		Step:        StepPersona,
		Preferences: mealplan.DefaultPreferences(),
		ActiveDay:   1,
	}
}

// StepValid 目前步驟的條件是否成立
func (s *State) StepValid() bool {
	return s.stepValid(s.Step)
}

func (s *State) stepValid(step Step) bool {
	p := s.Preferences
	switch step {
	case StepPersona:
		return p.Persona != ""
	case StepDiet:
		return p.Diet != ""
	case StepTime:
		return p.CookingTime != ""
	case StepSetup:
		return p.KitchenSetup != ""
	case StepCity:
		return p.CityTier != ""
	case StepEconomics:
		return p.BudgetTotal > 0 && p.DurationDays > 0
	case StepScheduling:
		return strings.TrimSpace(p.CookingWindow) != ""
	case StepIngredients:
		return p.Ingredients.Len() >= MinIngredients
	default:
		return s.Plan != nil
	}
}

// Advance 條件成立時前進一步；食材步驟只能透過 Submit 離開
func (s *State) Advance() error {
	if s.Step >= StepIngredients {
		return ErrInvalidTransition
	}
	if !s.StepValid() {
		return ErrStepIncomplete
	}
	s.Step++
	return nil
}

// Retreat 回到上一步；從結果頁返回食材步驟並丟棄計畫
func (s *State) Retreat() {
	switch s.Step {
	case StepPersona:
		return
	case StepResult:
		s.Step = StepIngredients
		s.Plan = nil
		s.ActiveOptimization = nil
		s.ActiveDay = 1
	default:
		s.Step--
	}
}

// Reset 放棄並回到初始狀態
func (s *State) Reset() {
	*s = *New()
}

// SetActiveDay 切換結果頁顯示的天數
func (s *State) SetActiveDay(day int) error {
	if s.Step != StepResult {
		return ErrInvalidTransition
	}
	if s.Plan == nil {
		return ErrNoPlan
	}
	if !s.Plan.HasDay(day) {
		return ErrDayNotFound
	}
	s.ActiveDay = day
	return nil
}

// ActiveDayPlan 目前顯示的單日菜單
func (s *State) ActiveDayPlan() (*mealplan.DayPlan, error) {
	if s.Plan == nil {
		return nil, ErrNoPlan
	}
	idx := s.Plan.DayIndex(s.ActiveDay)
	if idx < 0 {
		return nil, ErrDayNotFound
	}
	return s.Plan.DailyPlans[idx], nil
}

// PrepareSubmit 驗證可以提交，回傳交給生成服務的偏好副本
func (s *State) PrepareSubmit() (mealplan.Preferences, error) {
	if s.Step != StepIngredients {
		return mealplan.Preferences{}, ErrInvalidTransition
	}
	if !s.StepValid() {
		return mealplan.Preferences{}, ErrInsufficientInput
	}
	return s.Preferences.Clone(), nil
}

// ApplyPlan 套用提交結果：進入結果頁並從第一天開始
func (s *State) ApplyPlan(plan *mealplan.Plan, constraint *mealplan.Optimization) {
	s.Step = StepResult
	s.Plan = plan
	s.ActiveDay = 1
	s.ActiveOptimization = constraint
}

// PrepareRegenerate 只有結果頁可以重新生成
func (s *State) PrepareRegenerate() (mealplan.Preferences, error) {
	if s.Step != StepResult {
		return mealplan.Preferences{}, ErrInvalidTransition
	}
	return s.Preferences.Clone(), nil
}

// ApplyRegenerated 替換計畫並保留目前天數，新計畫沒有該天時回到第一天
func (s *State) ApplyRegenerated(plan *mealplan.Plan, constraint *mealplan.Optimization) {
	s.Plan = plan
	s.ActiveOptimization = constraint
	if plan == nil || !plan.HasDay(s.ActiveDay) {
		s.ActiveDay = 1
	}
}
