package schedule

import (
	"fmt"
	"net/url"
	"strings"

	"bachat-planner/internal/core/mealplan"
)

const (
	shareHeader  = "🛒 *My Bachat Grocery List:*"
	shareBaseURL = "https://wa.me/?text="
)

// ShareText 需購買項目的分享文字，保留原順序
func ShareText(plan *mealplan.Plan) string {
	var sb strings.Builder
	sb.WriteString(shareHeader)
	sb.WriteString("\n")
	for _, g := range plan.MustAcquire() {
		sb.WriteString(fmt.Sprintf("\n• %s: %s", g.Category, g.Item))
	}
	return sb.String()
}

// ShareLink WhatsApp 分享連結，文字以百分比編碼
func ShareLink(plan *mealplan.Plan) string {
	return shareBaseURL + strings.ReplaceAll(url.QueryEscape(ShareText(plan)), "+", "%20")
}
