package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHour 將 "6 PM" 之類的 12 小時制轉為 0-23
func ParseHour(s string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid hour %q: want \"<N> AM|PM\"", s)
	}

	hour, err := strconv.Atoi(fields[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("invalid hour %q: want 1-12", s)
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("invalid period in %q: want AM or PM", s)
	}
	return hour, nil
}

// ParseWindow 解析 "<N> AM|PM - <N> AM|PM" 為起訖小時
func ParseWindow(window string) (start, end int, err error) {
	parts := strings.Split(window, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cooking window %q", window)
	}
	if start, err = ParseHour(parts[0]); err != nil {
		return 0, 0, err
	}
	if end, err = ParseHour(parts[1]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
