package schedule

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"bachat-planner/internal/core/mealplan"
)

const (
	// CalendarFilename 批次匯出的檔名
	CalendarFilename = "bachat_schedule.ics"

	calendarProdID = "-//Bachat-Bhojan//Calendar Service//EN"
	gcalBaseURL    = "https://www.google.com/calendar/render?action=TEMPLATE"
	timestampFmt   = "20060102T150405Z"
)

// FormatTimestamp UTC basic 格式，連結與 .ics 共用
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFmt)
}

// CalendarDocument 產生包含所有事件的 iCalendar 文件，以 CRLF 分行
func (d *Deriver) CalendarDocument(plan *mealplan.Plan, prefs mealplan.Preferences) (string, error) {
	events, err := d.Events(plan, prefs)
	if err != nil {
		return "", err
	}
	return RenderCalendar(events), nil
}

// RenderCalendar 將事件組成 VCALENDAR
func RenderCalendar(events []Event) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + calendarProdID,
	}
	for _, e := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"DTSTART:"+FormatTimestamp(e.Start),
			"DTEND:"+FormatTimestamp(e.End),
			"SUMMARY:"+e.Title,
			"DESCRIPTION:"+strings.ReplaceAll(e.Description, "\n", `\n`),
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}

// SingleEventLink 新增單一事件的 Google Calendar 連結
func SingleEventLink(e Event) string {
	params := []string{
		"text=" + url.QueryEscape(e.Title),
		"dates=" + url.QueryEscape(fmt.Sprintf("%s/%s", FormatTimestamp(e.Start), FormatTimestamp(e.End))),
		"details=" + url.QueryEscape(e.Description),
		"sf=true",
		"output=xml",
	}
	return gcalBaseURL + "&" + strings.Join(params, "&")
}
