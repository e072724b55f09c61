package wizard

import (
	"fmt"

	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/pkg/common"
)

// List 食材清單名稱
type List string

const (
	ListIngredients List = "ingredients"
	ListExcluded    List = "excluded"
)

// PreferencesPatch 部分更新偏好，nil 欄位不變
type PreferencesPatch struct {
	Persona             *mealplan.Persona      `json:"persona,omitempty" yaml:"persona"`
	PortabilityRequired *bool                  `json:"portabilityRequired,omitempty" yaml:"portabilityRequired"`
	Diet                *string                `json:"diet,omitempty" yaml:"diet"`
	CookingTime         *string                `json:"cookingTime,omitempty" yaml:"cookingTime"`
	KitchenSetup        *string                `json:"kitchenSetup,omitempty" yaml:"kitchenSetup"`
	CityTier            *string                `json:"cityTier,omitempty" yaml:"cityTier"`
	BudgetTotal         *float64               `json:"budgetTotal,omitempty" yaml:"budgetTotal"`
	DurationDays        *int                   `json:"durationDays,omitempty" yaml:"durationDays"`
	Vibe                *mealplan.Vibe         `json:"vibe,omitempty" yaml:"vibe"`
	CookingWindow       *string                `json:"cookingWindow,omitempty" yaml:"cookingWindow"`
	ReminderTime        *mealplan.ReminderTime `json:"reminderTime,omitempty" yaml:"reminderTime"`
	RemindersPerDay     *int                   `json:"remindersPerDay,omitempty" yaml:"remindersPerDay"`
}

// Validate 檢查欄位值；空字串代表清除選項
func (p *PreferencesPatch) Validate() error {
	if p.Persona != nil && !p.Persona.Valid() {
		return common.NewValidationError(fmt.Sprintf("unknown persona %q", *p.Persona))
	}
	checks := []struct {
		field string
		value *string
		valid func(string) bool
	}{
		{"diet", p.Diet, mealplan.ValidDiet},
		{"cookingTime", p.CookingTime, mealplan.ValidCookingTime},
		{"kitchenSetup", p.KitchenSetup, mealplan.ValidKitchenSetup},
		{"cityTier", p.CityTier, mealplan.ValidCityTier},
	}
	for _, c := range checks {
		if c.value != nil && *c.value != "" && !c.valid(*c.value) {
			return common.NewValidationError(fmt.Sprintf("unknown %s %q", c.field, *c.value))
		}
	}
	if p.BudgetTotal != nil && *p.BudgetTotal <= 0 {
		return common.NewValidationError("budgetTotal must be greater than 0")
	}
	if p.DurationDays != nil && !mealplan.ValidDuration(*p.DurationDays) {
		return common.NewValidationError("durationDays must be 1, 2 or 3")
	}
	if p.Vibe != nil && *p.Vibe != mealplan.VibeLowEnergy && *p.Vibe != mealplan.VibeFullPower {
		return common.NewValidationError(fmt.Sprintf("unknown vibe %q", *p.Vibe))
	}
	if p.CookingWindow != nil && *p.CookingWindow != "" {
		if _, _, err := schedule.ParseWindow(*p.CookingWindow); err != nil {
			return common.NewValidationError(err.Error())
		}
	}
	if p.ReminderTime != nil && *p.ReminderTime != mealplan.ReminderMorning && *p.ReminderTime != mealplan.ReminderEvening {
		return common.NewValidationError(fmt.Sprintf("unknown reminderTime %q", *p.ReminderTime))
	}
	if p.RemindersPerDay != nil && *p.RemindersPerDay != 1 && *p.RemindersPerDay != 2 {
		return common.NewValidationError("remindersPerDay must be 1 or 2")
	}
	return nil
}

// UpdatePreferences 收集階段套用部分更新；結果頁的偏好已交給生成服務，不可再改
func (s *State) UpdatePreferences(patch PreferencesPatch) error {
	if s.Step == StepResult {
		return ErrInvalidTransition
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	p := &s.Preferences
	if patch.Persona != nil {
		p.SetPersona(*patch.Persona)
	}
	if patch.PortabilityRequired != nil {
		p.PortabilityRequired = *patch.PortabilityRequired
	}
	if patch.Diet != nil {
		p.Diet = *patch.Diet
	}
	if patch.CookingTime != nil {
		p.CookingTime = *patch.CookingTime
	}
	if patch.KitchenSetup != nil {
		p.KitchenSetup = *patch.KitchenSetup
	}
	if patch.CityTier != nil {
		p.CityTier = *patch.CityTier
	}
	if patch.BudgetTotal != nil {
		p.BudgetTotal = *patch.BudgetTotal
	}
	if patch.DurationDays != nil {
		p.DurationDays = *patch.DurationDays
	}
	if patch.Vibe != nil {
		p.Vibe = *patch.Vibe
	}
	if patch.CookingWindow != nil {
		p.CookingWindow = *patch.CookingWindow
	}
	if patch.ReminderTime != nil {
		p.ReminderTime = *patch.ReminderTime
	}
	if patch.RemindersPerDay != nil {
		p.RemindersPerDay = *patch.RemindersPerDay
	}
	return nil
}

func (s *State) tags(list List) (*mealplan.TagSet, error) {
	if s.Step == StepResult {
		return nil, ErrInvalidTransition
	}
	switch list {
	case ListIngredients:
		return &s.Preferences.Ingredients, nil
	case ListExcluded:
		return &s.Preferences.ExcludedIngredients, nil
	default:
		return nil, ErrUnknownList
	}
}

// AddTag 加入食材，重複或空白時不變
func (s *State) AddTag(list List, tag string) (bool, error) {
	set, err := s.tags(list)
	if err != nil {
		return false, err
	}
	return set.Add(tag), nil
}

// RemoveTag 移除指定位置的食材
func (s *State) RemoveTag(list List, index int) (bool, error) {
	set, err := s.tags(list)
	if err != nil {
		return false, err
	}
	return set.Remove(index), nil
}

// RemoveLastTag 移除最後一個食材
func (s *State) RemoveLastTag(list List) (bool, error) {
	set, err := s.tags(list)
	if err != nil {
		return false, err
	}
	return set.RemoveLast(), nil
}

// ToggleTag 快速選取食材
func (s *State) ToggleTag(list List, tag string) (bool, error) {
	set, err := s.tags(list)
	if err != nil {
		return false, err
	}
	return set.Toggle(tag), nil
}
