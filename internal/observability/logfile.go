package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// DefaultExcerptBytes is how much of the session log is embedded in a report.
const DefaultExcerptBytes = 10000

// TruncationMarker prefixes an excerpt that was cut from a longer log.
const TruncationMarker = "...(truncated)...\n"

// RunLogPath returns the per-run session log path: dir/test_YYYYMMDD_HHMMSS.log.
func RunLogPath(dir string, started time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("test_%s.log", started.Format("20060102_150405")))
}

// TailFile returns at most max bytes from the end of the file at path. When the
// file is longer than max the result is prefixed with TruncationMarker. A
// non-positive max selects DefaultExcerptBytes. The tail never starts inside
// a multi-byte character.
func TailFile(path string, max int) (string, error) {
	if max <= 0 {
		max = DefaultExcerptBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat log file: %w", err)
	}

	size := info.Size()
	if size <= int64(max) {
		data, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("failed to read log file: %w", err)
		}
		return string(data), nil
	}

	buf := make([]byte, max)
	if _, err := f.ReadAt(buf, size-int64(max)); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read log tail: %w", err)
	}
	start := 0
	for start < len(buf) && !utf8.RuneStart(buf[start]) {
		start++
	}
	return TruncationMarker + string(buf[start:]), nil
}
