package utils

import (
	"fmt"
	"strings"
)

// EmptySizePlaceholder is displayed in place of a zero byte size.
const EmptySizePlaceholder = "—"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize converts a byte length into a human-readable binary magnitude.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return EmptySizePlaceholder
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(sizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 || value >= 10 {
		return fmt.Sprintf("%.0f %s", value, sizeUnits[unitIndex])
	}
	formatted := strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0")
	return formatted + " " + sizeUnits[unitIndex]
}
