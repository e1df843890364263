package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func TestToISODate(t *testing.T) {
	assert.Equal(t, "2025-01-10", ToISODate(testNow))
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("2025-01-10"))
	assert.True(t, IsISODate(" 2025-01-10 "))
	assert.False(t, IsISODate("2025/01/10"))
	assert.False(t, IsISODate("10-01-2025"))
	assert.False(t, IsISODate("2025-13-01"))
	assert.False(t, IsISODate(""))
}

func TestCurrentDateInfo(t *testing.T) {
	// 2025-01-10 is a Friday.
	assert.Equal(t, "今天是 2025年1月10日星期五（2025-01-10）", CurrentDateInfo(testNow))
}

func TestValidateAssistantDate(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"today kept", "2025-01-10", "2025-01-10"},
		{"yesterday kept", "2025-01-09", "2025-01-09"},
		{"within a year kept", "2024-06-15", "2024-06-15"},
		{"within a month ahead kept", "2025-02-05", "2025-02-05"},
		{"too far past clamped", "2023-12-01", "2025-01-10"},
		{"too far future clamped", "2025-03-01", "2025-01-10"},
		{"malformed clamped", "不是日期", "2025-01-10"},
		{"empty clamped", "", "2025-01-10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateAssistantDate(tc.in, testNow))
		})
	}
}
