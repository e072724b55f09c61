package mealplan

// Option 問卷選項
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog 所有問卷選項，屬於設定資料
type Catalog struct {
	Personas       []Option       `json:"personas" yaml:"personas"`
	Diets          []Option       `json:"diets" yaml:"diets"`
	CookingTimes   []Option       `json:"cookingTimes" yaml:"cookingTimes"`
	KitchenSetups  []Option       `json:"kitchenSetups" yaml:"kitchenSetups"`
	CityTiers      []Option       `json:"cityTiers" yaml:"cityTiers"`
	Durations      []int          `json:"durations" yaml:"durations"`
	CookingWindows []string       `json:"cookingWindows" yaml:"cookingWindows"`
	ReminderTimes  []ReminderTime `json:"reminderTimes" yaml:"reminderTimes"`
	RemindersPer   []int          `json:"remindersPerDay" yaml:"remindersPerDay"`
	Vibes          []Vibe         `json:"vibes" yaml:"vibes"`
	Optimizations  []Optimization `json:"optimizations" yaml:"optimizations"`
	QuickAdd       []Option       `json:"quickAdd" yaml:"quickAdd"`
}

var (
	personaOptions = []Option{
		{Value: string(PersonaStudent), Icon: "🎓", Description: "Budget focus, tiffin needs"},
		{Value: string(PersonaWorkingPro), Icon: "💼", Description: "Speed & meal prep"},
		{Value: string(PersonaHousehold), Icon: "🏠", Description: "Balanced & nutritional"},
	}
	dietOptions = []Option{
		{Value: "Vegetarian", Icon: "🌿"},
		{Value: "Non-Veg", Icon: "🍗"},
		{Value: "Vegan", Icon: "🥗"},
		{Value: "Keto", Icon: "🥩"},
		{Value: "Paleo", Icon: "🦴"},
		{Value: "High-Protein", Icon: "💪"},
	}
	cookingTimeOptions = []Option{
		{Value: "Quick Snack (15m)", Icon: "⚡"},
		{Value: "30 min", Icon: "⏱️"},
		{Value: "Proper Meal (45m)", Icon: "🥘"},
		{Value: "60 min+", Icon: "⏱️"},
	}
	kitchenSetupOptions = []Option{
		{Value: "Just Microwave", Icon: "🍿"},
		{Value: "Full Chef Kitchen", Icon: "👨‍🍳"},
		{Value: "Single Burner", Icon: "🔥"},
		{Value: "Air Fryer", Icon: "🌬️"},
	}
	cityTierOptions = []Option{
		{Value: "Metro", Icon: "🏙️"},
		{Value: "Tier-2", Icon: "🏘️"},
		{Value: "Tier-3", Icon: "🏡"},
	}
	quickAddOptions = []Option{
		{Value: "Potato", Icon: "🥔"},
		{Value: "Onion", Icon: "🧅"},
		{Value: "Rice", Icon: "🍚"},
		{Value: "Paneer", Icon: "🧀"},
		{Value: "Tomato", Icon: "🍅"},
		{Value: "Chicken", Icon: "🍗"},
		{Value: "Garlic", Icon: "🧄"},
		{Value: "Ginger", Icon: "🫚"},
		{Value: "Bread", Icon: "🍞"},
		{Value: "Milk", Icon: "🥛"},
		{Value: "Eggs", Icon: "🥚"},
		{Value: "Dal", Icon: "🥣"},
		{Value: "Chilli", Icon: "🌶️"},
		{Value: "Coriander", Icon: "🌿"},
		{Value: "Lemon", Icon: "🍋"},
		{Value: "Butter", Icon: "🧈"},
		{Value: "Atta", Icon: "🌾"},
	}

	// DurationOptions 可選天數
	DurationOptions = []int{1, 2, 3}

	// CookingWindowOptions 預設烹飪時段
	CookingWindowOptions = []string{"6 AM - 8 AM", "12 PM - 2 PM", "6 PM - 8 PM", "9 PM - 11 PM"}
)

// Options 回傳選項目錄
func Options() Catalog {
	return Catalog{
		Personas:       personaOptions,
		Diets:          dietOptions,
		CookingTimes:   cookingTimeOptions,
		KitchenSetups:  kitchenSetupOptions,
		CityTiers:      cityTierOptions,
		Durations:      DurationOptions,
		CookingWindows: CookingWindowOptions,
		ReminderTimes:  []ReminderTime{ReminderMorning, ReminderEvening},
		RemindersPer:   []int{1, 2},
		Vibes:          []Vibe{VibeLowEnergy, VibeFullPower},
		Optimizations:  []Optimization{OptimizeCheapest, OptimizeFastest, OptimizeHighProtein, OptimizeExtraSpicy},
		QuickAdd:       quickAddOptions,
	}
}

// ValidDuration 天數是否在可選範圍
func ValidDuration(days int) bool {
	for _, d := range DurationOptions {
		if d == days {
			return true
		}
	}
	return false
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// ValidDiet 是否為目錄內的飲食選項
func ValidDiet(v string) bool { return hasOption(dietOptions, v) }

// ValidCookingTime 是否為目錄內的烹飪時間
func ValidCookingTime(v string) bool { return hasOption(cookingTimeOptions, v) }

// ValidKitchenSetup 是否為目錄內的廚房設備
func ValidKitchenSetup(v string) bool { return hasOption(kitchenSetupOptions, v) }

// ValidCityTier 是否為目錄內的城市等級
func ValidCityTier(v string) bool { return hasOption(cityTierOptions, v) }
