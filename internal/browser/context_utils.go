// internal/browser/context_utils.go
package browser

import "context"

// CombineContext returns a context derived from primary that is also
// canceled when secondary is done. Values come from primary only. chromedp
// keeps its target in context values, so primary is the tab context and
// secondary carries the caller's deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
