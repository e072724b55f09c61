package mealplan

import (
	"fmt"

	"bachat-planner/internal/core/ai/provider"
	"bachat-planner/internal/pkg/common"
)

// dietaryGuardrail 依飲食選項產生硬性限制
func dietaryGuardrail(baseDiet string) string {
	switch baseDiet {
	case "Vegetarian":
		return "CRITICAL DIETARY GUARDRAIL: Strictly Vegetarian. No eggs, meat, or fish."
	case "Vegan":
		return "CRITICAL DIETARY GUARDRAIL: Strictly Vegan. No dairy, meat, or animal products."
	case "Non-Veg":
		return "CONTEXT: Non-Vegetarian allowed."
	default:
		return fmt.Sprintf("CONTEXT: Follow %s diet.", baseDiet)
	}
}

func budgetFlag(daily float64) string {
	if Feasibility(daily).Tight {
		return "TIGHT"
	}
	return "FEASIBLE"
}

func formatRupees(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("₹%d", int64(v))
	}
	return fmt.Sprintf("₹%.2f", v)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return common.StringSliceToString(items)
}

// buildPlanPrompt 完整計畫的 prompt
func buildPlanPrompt(prefs Preferences, constraint *Optimization) string {
	daily := prefs.DailyBudget()
	baseDiet := prefs.BaseDiet()

	var optimization string
	if constraint != nil {
		optimization = fmt.Sprintf("OPTIMIZATION: %s", *constraint)
	}

	var portability string
	if prefs.PortabilityRequired {
		portability = "PORTABILITY: Lunch must be tiffin-friendly (portable or one-pot). Add a tiffinNote where relevant."
	}

	return fmt.Sprintf(`Act as "Bachat-Bhojan", the smart solo culinary planner.
DATA:
- Persona: %s
- Daily Budget: %s
- Duration: %d days
- City Tier: %s
- Kitchen: %s
- Cooking Time Per Meal: %s
- Ingredients Available: %s
- Ingredients To Avoid: %s
- Current Vibe: %s
- Target Cooking Window: %s
- Reminders: %d per day, %s

%s
BUDGET STATUS: %s. Ensure the total plan fits the %s daily limit.
%s
%s

STRICT SUBSTITUTION RULES:
For EVERY single meal (Breakfast, Lunch, and Dinner), you MUST suggest at least TWO distinct, economical substitutes.
Each substitute MUST include:
1. 'original': The standard/expensive ingredient.
2. 'replacement': The cheaper or more efficient alternative.
3. 'benefit': A brief justification (e.g., 'Cheaper than store-bought', 'Higher shelf life', 'Better bulk value', 'Zero-waste usage').

DIETARY COMPLIANCE: All substitutes MUST strictly adhere to the %s diet. (e.g., if Vegetarian, NEVER suggest eggs/meat as replacements).

PLAN SHAPE: Return exactly %d dailyPlans numbered from day 1. Mark every groceryList item already in the available ingredients with isOwned=true.
If a weekend batch-prep would help, add a short mealPrepNote.

Respond with a single JSON object following the response schema.`,
		prefs.Persona,
		formatRupees(daily),
		prefs.DurationDays,
		prefs.CityTier,
		prefs.KitchenSetup,
		prefs.CookingTime,
		listOrNone(prefs.Ingredients),
		listOrNone(prefs.ExcludedIngredients),
		prefs.Vibe,
		prefs.CookingWindow,
		prefs.RemindersPerDay,
		prefs.ReminderTime,
		dietaryGuardrail(baseDiet),
		budgetFlag(daily),
		formatRupees(daily),
		optimization,
		portability,
		baseDiet,
		prefs.DurationDays,
	)
}

// buildSwapPrompt 單一餐點替換的 prompt，每餐預算為每日預算的三分之一
func buildSwapPrompt(prefs Preferences, meal *Meal) string {
	return fmt.Sprintf(`Act as "Bachat-Bhojan". Swap this meal: "%s" (%s) for an alternative.
Constraints:
- Budget: %s for this slot.
- Diet: Strictly %s.
- Available: %s.
- Avoid: %s.
- Must include at least 2 economical substitutions with justifications.
Provide ONE meal object in JSON with type "%s".`,
		meal.Name,
		meal.Type,
		formatRupees(prefs.DailyBudget()/3),
		prefs.Diet,
		listOrNone(prefs.Ingredients),
		listOrNone(prefs.ExcludedIngredients),
		meal.Type,
	)
}

// buildZeroPrepPrompt 只用現有食材的零準備餐點 prompt
func buildZeroPrepPrompt(prefs Preferences, owned []string) string {
	return fmt.Sprintf(`Act as "Bachat-Bhojan". The user needs a "0-prep" alternative because their schedule changed.
STRICT RULES:
- Use ONLY these ingredients already in their pantry: %s.
- Must be strictly %s.
- Must be ₹0 additional cost.
- Must be ready in < 5 mins.
- Must include at least 2 economical substitutions with justifications.
Provide ONE meal object in JSON.`,
		listOrNone(owned),
		prefs.Diet,
	)
}

func str() *provider.Schema { return &provider.Schema{Type: provider.TypeString} }
func num() *provider.Schema { return &provider.Schema{Type: provider.TypeNumber} }
func integer() *provider.Schema { return &provider.Schema{Type: provider.TypeInteger} }
func boolean() *provider.Schema { return &provider.Schema{Type: provider.TypeBoolean} }

func arrayOf(items *provider.Schema) *provider.Schema {
	return &provider.Schema{Type: provider.TypeArray, Items: items}
}

// mealSchema 單一餐點的回應結構
func mealSchema() *provider.Schema {
	return &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"type":               str(),
			"name":               str(),
			"description":        str(),
			"isPortableOrOnePot": boolean(),
			"tiffinNote":         str(),
			"steps":              arrayOf(str()),
			"substitutions": arrayOf(&provider.Schema{
				Type: provider.TypeObject,
				Properties: map[string]*provider.Schema{
					"original":    str(),
					"replacement": str(),
					"benefit":     str(),
				},
				Required: []string{"original", "replacement", "benefit"},
			}),
		},
		Required: []string{"type", "name", "description", "isPortableOrOnePot", "steps", "substitutions"},
	}
}

// planSchema 完整計畫的回應結構
func planSchema() *provider.Schema {
	return &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"title":                    str(),
			"description":              str(),
			"personalizationReasoning": str(),
			"cityCostInfluence":        str(),
			"efficiencyScore":          num(),
			"reminderJustification":    str(),
			"mealPrepNote":             str(),
			"dailyPlans": arrayOf(&provider.Schema{
				Type: provider.TypeObject,
				Properties: map[string]*provider.Schema{
					"day":   integer(),
					"meals": arrayOf(mealSchema()),
				},
				Required: []string{"day", "meals"},
			}),
			"groceryList": arrayOf(&provider.Schema{
				Type: provider.TypeObject,
				Properties: map[string]*provider.Schema{
					"item":     str(),
					"category": str(),
					"isOwned":  boolean(),
				},
				Required: []string{"item", "category", "isOwned"},
			}),
			"fallbackPlans":  arrayOf(str()),
			"chefWisdom":     arrayOf(str()),
			"budgetAnalysis": str(),
			"searchQuery":    str(),
		},
		Required: []string{
			"title", "description", "personalizationReasoning", "cityCostInfluence",
			"efficiencyScore", "reminderJustification", "dailyPlans", "groceryList",
			"chefWisdom", "budgetAnalysis", "searchQuery",
		},
	}
}
