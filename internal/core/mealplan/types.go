package mealplan

import "strings"

// Persona 使用者類型
type Persona string

const (
	PersonaStudent    Persona = "Student"
	PersonaWorkingPro Persona = "Working Pro"
	PersonaHousehold  Persona = "Household"
)

// Valid 是否為已知的 persona
func (p Persona) Valid() bool {
	switch p {
	case PersonaStudent, PersonaWorkingPro, PersonaHousehold:
		return true
	}
	return false
}

// Vibe 使用者當下的精力狀態
type Vibe string

const (
	VibeLowEnergy Vibe = "LOW_ENERGY"
	VibeFullPower Vibe = "FULL_POWER"
)

// ReminderTime 提醒時段
type ReminderTime string

const (
	ReminderMorning ReminderTime = "Morning"
	ReminderEvening ReminderTime = "Evening"
)

// Optimization 重新生成時的最佳化條件
type Optimization string

const (
	OptimizeCheapest    Optimization = "CHEAPEST"
	OptimizeFastest     Optimization = "FASTEST"
	OptimizeHighProtein Optimization = "HIGH_PROTEIN"
	OptimizeExtraSpicy  Optimization = "EXTRA_SPICY"
)

// ParseOptimization 解析最佳化條件，空字串回傳 nil
func ParseOptimization(s string) (*Optimization, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil, true
	}
	o := Optimization(s)
	switch o {
	case OptimizeCheapest, OptimizeFastest, OptimizeHighProtein, OptimizeExtraSpicy:
		return &o, true
	}
	return nil, false
}

// Preferences 問卷累積的偏好
type Preferences struct {
	Persona             Persona      `json:"persona" yaml:"persona"`
	PortabilityRequired bool         `json:"portabilityRequired" yaml:"portabilityRequired"`
	Diet                string       `json:"diet" yaml:"diet"`
	CookingTime         string       `json:"cookingTime" yaml:"cookingTime"`
	KitchenSetup        string       `json:"kitchenSetup" yaml:"kitchenSetup"`
	CityTier            string       `json:"cityTier" yaml:"cityTier"`
	BudgetTotal         float64      `json:"budgetTotal" yaml:"budgetTotal"`
	DurationDays        int          `json:"durationDays" yaml:"durationDays"`
	Ingredients         TagSet       `json:"ingredients" yaml:"ingredients"`
	ExcludedIngredients TagSet       `json:"excludedIngredients" yaml:"excludedIngredients"`
	Vibe                Vibe         `json:"vibe" yaml:"vibe"`
	CookingWindow       string       `json:"cookingWindow" yaml:"cookingWindow"`
	ReminderTime        ReminderTime `json:"reminderTime" yaml:"reminderTime"`
	RemindersPerDay     int          `json:"remindersPerDay" yaml:"remindersPerDay"`
}

// DefaultPreferences 問卷初始值
func DefaultPreferences() Preferences {
	return Preferences{
		Persona:             PersonaStudent,
		PortabilityRequired: true,
		Diet:                "Vegetarian",
		CookingTime:         "30 min",
		KitchenSetup:        "Single Burner",
		CityTier:            "Metro",
		BudgetTotal:         500,
		DurationDays:        1,
		Ingredients:         TagSet{},
		ExcludedIngredients: TagSet{},
		Vibe:                VibeLowEnergy,
		CookingWindow:       "6 PM - 8 PM",
		ReminderTime:        ReminderMorning,
		RemindersPerDay:     1,
	}
}

// SetPersona 設定 persona 並同步攜帶需求，之後仍可單獨覆寫
func (p *Preferences) SetPersona(persona Persona) {
	p.Persona = persona
	p.PortabilityRequired = persona == PersonaStudent
}

// DailyBudget 每日預算，每次重新計算
func (p Preferences) DailyBudget() float64 {
	if p.DurationDays <= 0 {
		return 0
	}
	return p.BudgetTotal / float64(p.DurationDays)
}

// BaseDiet 飲食選項的第一個詞，例如 "Vegetarian 🌿" → "Vegetarian"
func (p Preferences) BaseDiet() string {
	fields := strings.Fields(p.Diet)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Clone 深拷貝，交給生成邊界時使用
func (p Preferences) Clone() Preferences {
	p.Ingredients = p.Ingredients.Clone()
	p.ExcludedIngredients = p.ExcludedIngredients.Clone()
	return p
}

// MealType 餐別
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// Substitution 省錢替代食材
type Substitution struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Benefit     string `json:"benefit"`
}

// Meal 單一餐點
type Meal struct {
	Type               MealType       `json:"type"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	IsPortableOrOnePot bool           `json:"isPortableOrOnePot"`
	TiffinNote         string         `json:"tiffinNote,omitempty"`
	Steps              []string       `json:"steps"`
	Substitutions      []Substitution `json:"substitutions"`
}

// DayPlan 單日菜單
type DayPlan struct {
	Day   int     `json:"day"`
	Meals []*Meal `json:"meals"`
}

// GroceryItem 採買清單項目
type GroceryItem struct {
	Item     string `json:"item"`
	Category string `json:"category"`
	IsOwned  bool   `json:"isOwned"`
}

// Plan 生成的完整計畫
type Plan struct {
	Title                    string        `json:"title"`
	Description              string        `json:"description"`
	PersonalizationReasoning string        `json:"personalizationReasoning"`
	CityCostInfluence        string        `json:"cityCostInfluence"`
	EfficiencyScore          float64       `json:"efficiencyScore"`
	ReminderJustification    string        `json:"reminderJustification"`
	BudgetAnalysis           string        `json:"budgetAnalysis"`
	SearchQuery              string        `json:"searchQuery"`
	ChefWisdom               []string      `json:"chefWisdom"`
	FallbackPlans            []string      `json:"fallbackPlans,omitempty"`
	MealPrepNote             string        `json:"mealPrepNote,omitempty"`
	DailyPlans               []*DayPlan    `json:"dailyPlans"`
	GroceryList              []GroceryItem `json:"groceryList"`
}

// MustAcquire 需要購買的項目，保留原順序
func (p *Plan) MustAcquire() []GroceryItem {
	return p.filterGrocery(false)
}

// InStorage 已在家中的項目，保留原順序
func (p *Plan) InStorage() []GroceryItem {
	return p.filterGrocery(true)
}

// PantryItems 已擁有項目的名稱
func (p *Plan) PantryItems() []string {
	owned := p.InStorage()
	names := make([]string, 0, len(owned))
	for _, g := range owned {
		names = append(names, g.Item)
	}
	return names
}

func (p *Plan) filterGrocery(owned bool) []GroceryItem {
	out := make([]GroceryItem, 0, len(p.GroceryList))
	for _, g := range p.GroceryList {
		if g.IsOwned == owned {
			out = append(out, g)
		}
	}
	return out
}

// DayIndex 回傳指定 day 在 DailyPlans 中的位置，找不到回傳 -1
func (p *Plan) DayIndex(day int) int {
	for i, dp := range p.DailyPlans {
		if dp != nil && dp.Day == day {
			return i
		}
	}
	return -1
}

// HasDay 計畫是否包含指定 day
func (p *Plan) HasDay(day int) bool {
	return p.DayIndex(day) >= 0
}
