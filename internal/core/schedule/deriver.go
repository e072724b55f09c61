package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bachat-planner/internal/core/mealplan"
)

// EventKind 行事曆事件種類
type EventKind string

const (
	KindShopping EventKind = "shopping"
	KindCooking  EventKind = "cooking"
	KindPrep     EventKind = "prep"
)

const (
	groceryTitle = "Bachat Grocery Shopping 🛒"
	cookingTitle = "Bachat Cooking: Day %d 🍳"
	prepTitle    = "Bachat Weekend Meal Prep 🗓️"

	prepStartHour = 10
	prepEndHour   = 12
)

// ErrDayNotFound 計畫中沒有指定的天數
var ErrDayNotFound = errors.New("day not found in plan")

// Event 行事曆事件
type Event struct {
	Kind        EventKind `json:"kind"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

// Deriver 從計畫推導行事曆事件，不修改計畫
type Deriver struct {
	now func() time.Time
	loc *time.Location
}

// NewDeriver 建立推導器，loc 為 nil 時使用系統時區
func NewDeriver(loc *time.Location, now func() time.Time) *Deriver {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Deriver{now: now, loc: loc}
}

func (d *Deriver) today() time.Time {
	return d.now().In(d.loc)
}

func (d *Deriver) at(base time.Time, dayOffset, hour int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day()+dayOffset, hour, 0, 0, 0, d.loc)
}

// GroceryEvent 一小時後開始、為期一小時的採買事件
func (d *Deriver) GroceryEvent(plan *mealplan.Plan) Event {
	start := d.now().Add(time.Hour)
	names := make([]string, 0, len(plan.GroceryList))
	for _, g := range plan.MustAcquire() {
		names = append(names, g.Item)
	}
	return Event{
		Kind:        KindShopping,
		Title:       groceryTitle,
		Start:       start,
		End:         start.Add(time.Hour),
		Description: strings.Join(names, ", "),
	}
}

// CookingEvent 指定 day 的烹飪事件，日期為今天加 day-1 天
func (d *Deriver) CookingEvent(plan *mealplan.Plan, prefs mealplan.Preferences, day int) (Event, error) {
	idx := plan.DayIndex(day)
	if idx < 0 {
		return Event{}, fmt.Errorf("%w: %d", ErrDayNotFound, day)
	}
	startHour, endHour, err := ParseWindow(prefs.CookingWindow)
	if err != nil {
		return Event{}, err
	}
	return d.cookingEvent(plan.DailyPlans[idx], day-1, startHour, endHour), nil
}

func (d *Deriver) cookingEvent(dp *mealplan.DayPlan, offset, startHour, endHour int) Event {
	base := d.today()
	start := d.at(base, offset, startHour)
	end := d.at(base, offset, endHour)
	// 結束時間不晚於開始時間時視為跨日
	if !end.After(start) {
		end = d.at(base, offset+1, endHour)
	}

	lines := make([]string, 0, len(dp.Meals))
	for _, m := range dp.Meals {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Type, m.Name))
	}

	return Event{
		Kind:        KindCooking,
		Title:       fmt.Sprintf(cookingTitle, dp.Day),
		Start:       start,
		End:         end,
		Description: strings.Join(lines, "\n"),
	}
}

// PrepEvent 有 mealPrepNote 時，下一個週六 10:00-12:00 的備料事件
func (d *Deriver) PrepEvent(plan *mealplan.Plan) (Event, bool) {
	if plan.MealPrepNote == "" {
		return Event{}, false
	}
	base := d.today()
	ahead := (6 - int(base.Weekday()) + 7) % 7
	return Event{
		Kind:        KindPrep,
		Title:       prepTitle,
		Start:       d.at(base, ahead, prepStartHour),
		End:         d.at(base, ahead, prepEndHour),
		Description: plan.MealPrepNote,
	}, true
}

// Events 批次匯出的所有事件：採買、每日烹飪、可選的備料
func (d *Deriver) Events(plan *mealplan.Plan, prefs mealplan.Preferences) ([]Event, error) {
	startHour, endHour, err := ParseWindow(prefs.CookingWindow)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(plan.DailyPlans)+2)
	events = append(events, d.GroceryEvent(plan))
	for i, dp := range plan.DailyPlans {
		events = append(events, d.cookingEvent(dp, i, startHour, endHour))
	}
	if prep, ok := d.PrepEvent(plan); ok {
		events = append(events, prep)
	}
	return events, nil
}
