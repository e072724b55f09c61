package mealplan

import (
	"context"
	"errors"
	"fmt"
	"math"

	"bachat-planner/internal/core/ai/provider"
	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrIncompletePlan 模型回傳的計畫缺少每日菜單
	ErrIncompletePlan = errors.New("plan has no daily plans")
	// ErrIncompleteMeal 模型回傳的餐點缺少名稱
	ErrIncompleteMeal = errors.New("meal has no name")
)

// Generator 將 prompt 送給模型並取回原始文字
type Generator interface {
	ProcessRequest(ctx context.Context, req *provider.Request) (string, error)
}

// PlannerService 餐點計畫生成服務
type PlannerService struct {
	generator Generator
}

// NewPlannerService 創建新的計畫生成服務
func NewPlannerService(generator Generator) *PlannerService {
	return &PlannerService{generator: generator}
}

// GeneratePlan 依偏好與最佳化條件生成完整計畫
func (s *PlannerService) GeneratePlan(ctx context.Context, prefs Preferences, constraint *Optimization) (*Plan, error) {
	content, err := s.generator.ProcessRequest(ctx, &provider.Request{
		Name:   "meal_plan",
		Prompt: buildPlanPrompt(prefs, constraint),
		Schema: planSchema(),
	})
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(content)
	if err != nil {
		common.LogWarn("計畫解析失敗",
			zap.Error(err),
			zap.Int("ai_response_length", len(content)),
		)
		return nil, err
	}

	common.LogInfo("計畫生成完成",
		zap.String("title", plan.Title),
		zap.Int("days", len(plan.DailyPlans)),
		zap.Int("grocery_items", len(plan.GroceryList)),
	)
	return plan, nil
}

// SwapMeal 替換單一餐點
func (s *PlannerService) SwapMeal(ctx context.Context, prefs Preferences, meal *Meal) (*Meal, error) {
	content, err := s.generator.ProcessRequest(ctx, &provider.Request{
		Name:   "meal_swap",
		Prompt: buildSwapPrompt(prefs, meal),
		Schema: mealSchema(),
	})
	if err != nil {
		return nil, err
	}

	return ParseMeal(content, meal.Type)
}

// SuggestPantryOnlyMeal 只用現有食材建議零準備餐點
func (s *PlannerService) SuggestPantryOnlyMeal(ctx context.Context, prefs Preferences, owned []string) (*Meal, error) {
	content, err := s.generator.ProcessRequest(ctx, &provider.Request{
		Name:   "zero_prep",
		Prompt: buildZeroPrepPrompt(prefs, owned),
		Schema: mealSchema(),
	})
	if err != nil {
		return nil, err
	}

	return ParseMeal(content, "")
}

type rawDayPlan struct {
	Day   float64 `json:"day"`
	Meals []*Meal `json:"meals"`
}

type rawPlan struct {
	Plan
	DailyPlans []rawDayPlan `json:"dailyPlans"`
}

// ParsePlan 解析模型輸出並補齊缺漏欄位
func ParsePlan(content string) (*Plan, error) {
	content, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var raw rawPlan
	if err := common.ParseJSON(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	plan := raw.Plan
	if len(raw.DailyPlans) == 0 {
		return nil, ErrIncompletePlan
	}

	// 檢查並補充每日菜單
	plan.DailyPlans = make([]*DayPlan, 0, len(raw.DailyPlans))
	for i, rd := range raw.DailyPlans {
		day := int(math.Round(rd.Day))
		if day < 1 {
			day = i + 1
		}
		dp := &DayPlan{Day: day, Meals: make([]*Meal, 0, len(rd.Meals))}
		for j, m := range rd.Meals {
			if m == nil {
				continue
			}
			if err := fillMeal(m, defaultMealType(j)); err != nil {
				return nil, fmt.Errorf("day %d meal %d: %w", day, j+1, err)
			}
			dp.Meals = append(dp.Meals, m)
		}
		plan.DailyPlans = append(plan.DailyPlans, dp)
	}

	// 檢查並補充空值
	if plan.Title == "" {
		plan.Title = "Bachat Meal Plan"
	}
	if plan.ChefWisdom == nil {
		plan.ChefWisdom = []string{}
	}
	if plan.GroceryList == nil {
		plan.GroceryList = []GroceryItem{}
	}
	for i := range plan.GroceryList {
		if plan.GroceryList[i].Category == "" {
			plan.GroceryList[i].Category = "Other"
		}
	}

	return &plan, nil
}

// ParseMeal 解析單一餐點，fallbackType 用於模型未提供餐別時
func ParseMeal(content string, fallbackType MealType) (*Meal, error) {
	content, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var meal Meal
	if err := common.ParseJSON(content, &meal); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if err := fillMeal(&meal, fallbackType); err != nil {
		return nil, err
	}
	return &meal, nil
}

func fillMeal(m *Meal, fallbackType MealType) error {
	if m.Name == "" {
		return ErrIncompleteMeal
	}
	if m.Type == "" {
		m.Type = fallbackType
	}
	if m.Steps == nil {
		m.Steps = []string{}
	}
	if m.Substitutions == nil {
		m.Substitutions = []Substitution{}
	}
	return nil
}

func defaultMealType(index int) MealType {
	switch index {
	case 0:
		return Breakfast
	case 1:
		return Lunch
	default:
		return Dinner
	}
}
