package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/session"
	"bachat-planner/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

type fakePlanner struct {
	plan *mealplan.Plan
	err  error
}

func (f *fakePlanner) GeneratePlan(ctx context.Context, prefs mealplan.Preferences, constraint *mealplan.Optimization) (*mealplan.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

func (f *fakePlanner) SwapMeal(ctx context.Context, prefs mealplan.Preferences, meal *mealplan.Meal) (*mealplan.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mealplan.Meal{Type: meal.Type, Name: "Masala Oats"}, nil
}

func (f *fakePlanner) SuggestPantryOnlyMeal(ctx context.Context, prefs mealplan.Preferences, owned []string) (*mealplan.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mealplan.Meal{Type: mealplan.Dinner, Name: "Curd Rice"}, nil
}

func samplePlan() *mealplan.Plan {
	return &mealplan.Plan{
		Title: "Hostel Saver",
		DailyPlans: []*mealplan.DayPlan{
			{Day: 1, Meals: []*mealplan.Meal{
				{Type: mealplan.Breakfast, Name: "Poha"},
				{Type: mealplan.Lunch, Name: "Dal Rice"},
			}},
			{Day: 2, Meals: []*mealplan.Meal{
				{Type: mealplan.Breakfast, Name: "Upma"},
				{Type: mealplan.Lunch, Name: "Rajma Rice"},
			}},
		},
		GroceryList: []mealplan.GroceryItem{
			{Item: "Paneer", Category: "Dairy", IsOwned: false},
			{Item: "Rice", Category: "Pantry", IsOwned: true},
			{Item: "Spinach", Category: "Vegetables", IsOwned: false},
		},
	}
}

func newTestRouter(t *testing.T, p *fakePlanner) *gin.Engine {
	t.Helper()
	return newConfiguredRouter(t, p, func(*config.Config) {})
}

func newConfiguredRouter(t *testing.T, p *fakePlanner, configure func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Debug = true
	cfg.App.Version = "test"
	configure(cfg)

	store := session.NewMemoryStore(time.Hour, 100, 0)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	return SetupRouter(cfg, Dependencies{
		Sessions: session.NewManager(store, p),
		Deriver:  schedule.NewDeriver(time.UTC, func() time.Time { return now }),
		Model:    "fake",
	})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	if got := decode(t, w)["code"]; got != code {
		t.Errorf("code = %v, want %s", got, code)
	}
}

// newSession 建立 session 並推進到食材步驟
func newSession(t *testing.T, r http.Handler, ingredients int) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/sessions", nil)
	expectStatus(t, w, http.StatusCreated)
	id := decode(t, w)["id"].(string)

	for i := 0; i < 7; i++ {
		expectStatus(t, do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/advance", nil), http.StatusOK)
	}
	for _, tag := range []string{"Rice", "Dal", "Onion", "Tomato", "Curd"}[:ingredients] {
		expectStatus(t, do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ingredients/ingredients", map[string]string{"tag": tag}), http.StatusOK)
	}
	return id
}

func submitted(t *testing.T, r http.Handler) string {
	t.Helper()
	id := newSession(t, r, 5)
	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/submit", nil)
	expectStatus(t, w, http.StatusOK)
	return id
}

func TestOptions(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	w := do(t, r, http.MethodGet, "/api/v1/options", nil)
	expectStatus(t, w, http.StatusOK)

	body := decode(t, w)
	if diets, ok := body["diets"].([]interface{}); !ok || len(diets) == 0 {
		t.Errorf("diets = %v", body["diets"])
	}
}

func TestHealthProbes(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	for _, path := range []string{"/health", "/ready", "/live"} {
		expectStatus(t, do(t, r, http.MethodGet, path, nil), http.StatusOK)
	}

	expectStatus(t, do(t, r, http.MethodPost, "/api/v1/sessions", nil), http.StatusCreated)
	body := decode(t, do(t, r, http.MethodGet, "/health", nil))
	sessions, ok := body["sessions"].(map[string]interface{})
	if !ok {
		t.Fatalf("health body = %v, want session stats", body)
	}
	if sessions["size"] != float64(1) || sessions["max_size"] != float64(100) {
		t.Errorf("session stats = %v", sessions)
	}
}

func TestUnknownSession(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	w := do(t, r, http.MethodGet, "/api/v1/sessions/missing", nil)
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestPreferencesPatch(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	w := do(t, r, http.MethodPost, "/api/v1/sessions", nil)
	id := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPatch, "/api/v1/sessions/"+id+"/preferences", map[string]interface{}{
		"budgetTotal":  250,
		"durationDays": 2,
	})
	expectStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if body["dailyBudget"] != 125.0 {
		t.Errorf("dailyBudget = %v, want 125", body["dailyBudget"])
	}
	if level := body["feasibility"].(map[string]interface{})["level"]; level != "warning" {
		t.Errorf("feasibility level = %v, want warning", level)
	}

	w = do(t, r, http.MethodPatch, "/api/v1/sessions/"+id+"/preferences", map[string]interface{}{"durationDays": 5})
	expectCode(t, w, http.StatusBadRequest, "VALIDATION_FAILED")

	w = do(t, r, http.MethodPatch, "/api/v1/sessions/"+id+"/preferences", map[string]interface{}{"unknown": true})
	expectCode(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestAdvanceBlockedByPredicate(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	w := do(t, r, http.MethodPost, "/api/v1/sessions", nil)
	id := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPatch, "/api/v1/sessions/"+id+"/preferences", map[string]interface{}{"diet": ""})
	expectStatus(t, w, http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/advance", nil), http.StatusOK)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/advance", nil)
	expectCode(t, w, http.StatusConflict, "STEP_INCOMPLETE")
}

func TestIngredientListOperations(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	id := newSession(t, r, 3)
	base := "/api/v1/sessions/" + id + "/ingredients/ingredients"

	w := do(t, r, http.MethodPost, base, map[string]string{"tag": "Rice"})
	expectStatus(t, w, http.StatusOK)
	if changed := decode(t, w)["changed"]; changed != false {
		t.Errorf("duplicate add changed = %v, want false", changed)
	}

	w = do(t, r, http.MethodPost, base+"/toggle", map[string]string{"tag": "Dal"})
	expectStatus(t, w, http.StatusOK)
	ingredients := decode(t, w)["preferences"].(map[string]interface{})["ingredients"].([]interface{})
	if len(ingredients) != 2 {
		t.Errorf("ingredients after toggle = %v", ingredients)
	}

	expectStatus(t, do(t, r, http.MethodDelete, base+"/0", nil), http.StatusOK)
	w = do(t, r, http.MethodDelete, base, nil)
	expectStatus(t, w, http.StatusOK)
	ingredients = decode(t, w)["preferences"].(map[string]interface{})["ingredients"].([]interface{})
	if len(ingredients) != 0 {
		t.Errorf("ingredients = %v, want empty", ingredients)
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ingredients/pantry", map[string]string{"tag": "Salt"})
	expectCode(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestSubmitRequiresFiveIngredients(t *testing.T) {
	p := &fakePlanner{plan: samplePlan()}
	r := newTestRouter(t, p)
	id := newSession(t, r, 4)

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/submit", nil)
	expectCode(t, w, http.StatusUnprocessableEntity, "INSUFFICIENT_INGREDIENTS")
}

func TestSubmitFailure(t *testing.T) {
	p := &fakePlanner{err: errors.New("upstream down")}
	r := newTestRouter(t, p)
	id := newSession(t, r, 5)

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/submit", nil)
	expectCode(t, w, http.StatusBadGateway, "GENERATION_FAILED")

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+id, nil)
	expectStatus(t, w, http.StatusOK)
	if step := decode(t, w)["step"]; step != "ingredients" {
		t.Errorf("step = %v, want ingredients", step)
	}
}

func TestSubmitAndResultFlow(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{plan: samplePlan()})
	id := newSession(t, r, 5)
	base := "/api/v1/sessions/" + id

	w := do(t, r, http.MethodPost, base+"/submit", map[string]string{"constraint": "cheapest"})
	expectStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if body["step"] != "result" || body["activeOptimization"] != "CHEAPEST" {
		t.Fatalf("submit response = %v", body)
	}

	w = do(t, r, http.MethodPut, base+"/active-day", map[string]int{"day": 2})
	expectStatus(t, w, http.StatusOK)
	if day := decode(t, w)["activeDay"]; day != 2.0 {
		t.Errorf("activeDay = %v, want 2", day)
	}
	w = do(t, r, http.MethodPut, base+"/active-day", map[string]int{"day": 9})
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, r, http.MethodPost, base+"/meals/1/swap", nil)
	expectStatus(t, w, http.StatusOK)
	plan := decode(t, w)["plan"].(map[string]interface{})
	day2 := plan["dailyPlans"].([]interface{})[1].(map[string]interface{})
	if name := day2["meals"].([]interface{})[1].(map[string]interface{})["name"]; name != "Masala Oats" {
		t.Errorf("swapped meal = %v, want Masala Oats", name)
	}

	w = do(t, r, http.MethodPost, base+"/meals/7/zero-prep", nil)
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, r, http.MethodPost, base+"/regenerate", map[string]string{"constraint": "FASTEST"})
	expectStatus(t, w, http.StatusOK)
	body = decode(t, w)
	if body["activeOptimization"] != "FASTEST" || body["activeDay"] != 2.0 {
		t.Errorf("regenerate response = %v", body)
	}

	w = do(t, r, http.MethodPost, base+"/regenerate", map[string]string{"constraint": "SLOWEST"})
	expectCode(t, w, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestExports(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{plan: samplePlan()})
	id := submitted(t, r)
	base := "/api/v1/sessions/" + id

	w := do(t, r, http.MethodGet, base+"/grocery", nil)
	expectStatus(t, w, http.StatusOK)
	grocery := decode(t, w)
	if n := len(grocery["mustAcquire"].([]interface{})); n != 2 {
		t.Errorf("mustAcquire = %d items, want 2", n)
	}
	if n := len(grocery["inStorage"].([]interface{})); n != 1 {
		t.Errorf("inStorage = %d items, want 1", n)
	}

	w = do(t, r, http.MethodGet, base+"/calendar.ics", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bachat_schedule.ics") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	doc := w.Body.String()
	if !strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\n") || strings.Count(doc, "BEGIN:VEVENT") != 3 {
		t.Errorf("calendar document = %q", doc)
	}

	w = do(t, r, http.MethodGet, base+"/calendar/link?event=shopping", nil)
	expectStatus(t, w, http.StatusOK)
	if link := decode(t, w)["link"].(string); !strings.Contains(link, "dates=20261014T103000Z%2F20261014T113000Z") {
		t.Errorf("shopping link = %s", link)
	}

	w = do(t, r, http.MethodGet, base+"/calendar/link?event=cooking&day=2", nil)
	expectStatus(t, w, http.StatusOK)
	if title := decode(t, w)["event"].(map[string]interface{})["title"]; title != "Bachat Cooking: Day 2 🍳" {
		t.Errorf("cooking title = %v", title)
	}

	w = do(t, r, http.MethodGet, base+"/calendar/link?event=prep", nil)
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, r, http.MethodGet, base+"/calendar/link?event=party", nil)
	expectCode(t, w, http.StatusBadRequest, "INVALID_REQUEST")

	w = do(t, r, http.MethodGet, base+"/share", nil)
	expectStatus(t, w, http.StatusOK)
	share := decode(t, w)
	if text := share["text"].(string); !strings.Contains(text, "• Dairy: Paneer") {
		t.Errorf("share text = %q", text)
	}
	if link := share["link"].(string); !strings.HasPrefix(link, "https://wa.me/?text=") {
		t.Errorf("share link = %s", link)
	}
}

func TestExportsWithoutPlan(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{})
	w := do(t, r, http.MethodPost, "/api/v1/sessions", nil)
	id := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/grocery", nil)
	expectCode(t, w, http.StatusConflict, "NO_PLAN")
}

func TestRetreatFromResultAndDelete(t *testing.T) {
	r := newTestRouter(t, &fakePlanner{plan: samplePlan()})
	id := submitted(t, r)
	base := "/api/v1/sessions/" + id

	w := do(t, r, http.MethodPost, base+"/retreat", nil)
	expectStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if body["step"] != "ingredients" || body["plan"] != nil {
		t.Errorf("retreat response = %v", body)
	}

	expectStatus(t, do(t, r, http.MethodDelete, base, nil), http.StatusNoContent)
	expectCode(t, do(t, r, http.MethodGet, base, nil), http.StatusNotFound, "NOT_FOUND")
}

func TestDeduplicationOnlyGuardsModelRoutes(t *testing.T) {
	r := newConfiguredRouter(t, &fakePlanner{plan: samplePlan()}, func(cfg *config.Config) {
		cfg.DedupWindow = time.Minute
	})
	id := newSession(t, r, 5)
	base := "/api/v1/sessions/" + id

	// 重複的轉換與切換各自生效
	chip := map[string]string{"tag": "Ginger"}
	expectStatus(t, do(t, r, http.MethodPost, base+"/ingredients/ingredients/toggle", chip), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, base+"/ingredients/ingredients/toggle", chip), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, base+"/retreat", nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, base+"/retreat", nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, base+"/advance", nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodPost, base+"/advance", nil), http.StatusOK)

	state := decode(t, do(t, r, http.MethodGet, base, nil))
	if state["step"] != "ingredients" {
		t.Fatalf("step = %v, want ingredients", state["step"])
	}

	expectStatus(t, do(t, r, http.MethodPost, base+"/submit", nil), http.StatusOK)
	expectCode(t, do(t, r, http.MethodPost, base+"/submit", nil), http.StatusTooManyRequests, "TOO_MANY_REQUESTS")
}
