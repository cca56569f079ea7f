package utils

import (
	"time"
)

const layoutDateTime = "2006-01-02 15:04"

// FormatDateTime formats time to "YYYY-MM-DD HH:MM" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}
