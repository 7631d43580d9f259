package flow

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var counts = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 1,234.
func FormatCount(n int) string {
	return counts.Sprintf("%d", n)
}

// banner prints a framed one-line announcement to w.
func banner(w io.Writer, text string) {
	if w == nil {
		return
	}
	rule := strings.Repeat("*", 60)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", rule, text, rule)
}
