package model

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate converts YYYY-MM-DD, MM/DD/YYYY or RFC3339 input to YYYY-MM-DD.
// Unparseable input is returned trimmed and unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{DateLayout, "01/02/2006", "1/2/2006", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		if _, err := time.Parse(DateLayout, s[:10]); err == nil {
			return s[:10]
		}
	}
	return s
}

// DisplayDate renders a YYYY-MM-DD date as MM/DD/YYYY.
func DisplayDate(s string) string {
	t, err := time.Parse(DateLayout, NormalizeDate(s))
	if err != nil {
		return s
	}
	return t.Format("01/02/2006")
}

// ParseTimestamp accepts the timestamp shapes the sheet backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05", DateLayout, "01/02/2006 15:04:05", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
