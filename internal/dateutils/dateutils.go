// Package dateutils provides the date operations shared by the parsers and
// the confirmation workflow.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayoutISO is the calendar-date layout used across the application and
// on the wire (YYYY-MM-DD).
const DateLayoutISO = "2006-01-02"

// chineseWeekdays maps time.Weekday to its Chinese name.
var chineseWeekdays = [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// ToISODate formats a time as an ISO calendar date, dropping the time
// component.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayoutISO, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
	}
	return t, nil
}

// IsISODate reports whether s is a well-formed YYYY-MM-DD date.
func IsISODate(s string) bool {
	_, err := ParseISODate(s)
	return err == nil
}

// CurrentDateInfo renders the reference-date line embedded in the assistant
// system prompt, e.g. "今天是 2025年1月10日星期五（2025-01-10）". The literal
// date lets the remote model resolve relative expressions like 昨天 or 上周五
// without a clock of its own.
func CurrentDateInfo(now time.Time) string {
	return fmt.Sprintf("今天是 %d年%d月%d日%s（%s）",
		now.Year(), int(now.Month()), now.Day(),
		chineseWeekdays[now.Weekday()], ToISODate(now))
}

// ValidateAssistantDate checks a date string returned by the remote model and
// falls back to today when it is malformed or outside a plausible window
// (more than a year in the past or a month in the future).
func ValidateAssistantDate(dateStr string, now time.Time) string {
	today := ToISODate(now)

	t, err := ParseISODate(dateStr)
	if err != nil {
		return today
	}

	oneYearAgo := now.AddDate(-1, 0, 0)
	oneMonthLater := now.AddDate(0, 1, 0)
	if t.Before(oneYearAgo) || t.After(oneMonthLater) {
		return today
	}

	return t.Format(DateLayoutISO)
}
