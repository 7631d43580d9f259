package artifacts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the timestamp format embedded in artifact file names.
const TimestampLayout = "20060102_150405"

// nameSanitizer matches runs of characters that are unsafe in file names.
// Letters, digits, dot, underscore and hyphen are kept.
var nameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeName makes s safe to use as a single path element.
func SanitizeName(s string) string {
	s = nameSanitizer.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "screenshot"
	}
	return s
}

// FileName returns {testName}_{outcome}_{YYYYMMDD_HHMMSS}.png with both name
// parts sanitized.
func FileName(testName, outcome string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", SanitizeName(testName), SanitizeName(outcome), at.Format(TimestampLayout))
}
