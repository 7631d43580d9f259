package schemas

import (
	"context"
	"time"
)

// -- Browser Interfaces --

// Screenshotter is anything that can produce a PNG image of what it is
// currently showing. The artifact capturer depends only on this.
type Screenshotter interface {
	// Screenshot returns the encoded PNG bytes of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Driver controls a single browser tab. Page objects are written against this
// interface so they can be exercised without a real browser.
//
// Every blocking call honours ctx. WaitForVisible additionally takes its own
// upper bound and reports false on timeout instead of returning an error.
type Driver interface {
	Screenshotter

	Navigate(ctx context.Context, url string) error                                  // Loads url and waits for the document.
	Click(ctx context.Context, selector string) error                                // Clicks the first element matching selector.
	Fill(ctx context.Context, selector, text string) error                           // Clears and types text into an input.
	WaitForVisible(ctx context.Context, selector string, timeout time.Duration) bool // Waits until selector is visible.
	TextContent(ctx context.Context, selector string) (string, error)                // Text of the first match.
	LocatorCount(ctx context.Context, selector string) (int, error)                  // Number of elements matching selector.
	OuterHTML(ctx context.Context, selector string) (string, error)                  // Markup of the first match.
	ClickText(ctx context.Context, text string) (bool, error)                        // Clicks the first visible element whose text contains text.
	ScrollToBottom(ctx context.Context) error
	WaitForLoad(ctx context.Context) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)

	// Close releases the tab. Calling it more than once is allowed.
	Close(ctx context.Context) error
}

// BrowserManager is responsible for the lifecycle of the browser process and
// hands out tabs.
type BrowserManager interface {
	// NewPage opens a new tab bound to ctx.
	NewPage(ctx context.Context) (Driver, error)
	// Shutdown terminates the browser and all of its tabs.
	Shutdown(ctx context.Context) error
}
