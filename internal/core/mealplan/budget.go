package mealplan

// BudgetStatus 每日預算可行性
type BudgetStatus struct {
	Level string `json:"level"`
	Label string `json:"label"`
	Tight bool   `json:"tight"`
}

const (
	budgetWarningCeiling = 150
	budgetTightCeiling   = 300
)

// Feasibility 依每日預算判斷：≤150 警告，≤300 偏緊，其餘充足
func Feasibility(daily float64) BudgetStatus {
	switch {
	case daily <= budgetWarningCeiling:
		return BudgetStatus{Level: "warning", Label: "Budget Warning ⚠️", Tight: true}
	case daily <= budgetTightCeiling:
		return BudgetStatus{Level: "tight", Label: "Tight but Doable ✅"}
	default:
		return BudgetStatus{Level: "healthy", Label: "Budget Healthy 💰"}
	}
}

// Feasibility 目前偏好的預算狀態
func (p Preferences) Feasibility() BudgetStatus {
	return Feasibility(p.DailyBudget())
}
