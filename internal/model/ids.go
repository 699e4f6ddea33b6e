package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SameID compares record ids as strings. The backend may hand ids back as numbers,
// so callers must normalize with IDString before storing them.
func SameID(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// IDString renders a raw id value (string or JSON number) in its canonical string form.
func IDString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// NewRecordID returns a millisecond timestamp id. The backend keeps digits only.
func NewRecordID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// NewCompartmentID returns an id unique within a report.
func NewCompartmentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
