// Package pages holds the page objects of the storefront flow. Each page
// wraps a schemas.Driver with the selectors and checks for one screen, so
// the orchestrator never handles selectors directly.
package pages

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
)

// DefaultTimeout bounds a wait when neither the caller nor the page
// configuration supplies one.
const DefaultTimeout = 30 * time.Second

// BasePage provides the logged driver helpers shared by every page.
type BasePage struct {
	driver  schemas.Driver
	logger  *zap.Logger
	timeout time.Duration
}

// NewBasePage wraps driver. A nil logger discards output and a
// non-positive timeout falls back to DefaultTimeout.
func NewBasePage(driver schemas.Driver, logger *zap.Logger, timeout time.Duration) BasePage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return BasePage{driver: driver, logger: logger, timeout: timeout}
}

// Driver exposes the underlying driver, mainly so screenshots can be taken
// of whatever the page currently shows.
func (b *BasePage) Driver() schemas.Driver { return b.driver }

func (b *BasePage) Navigate(ctx context.Context, url string) error {
	b.logger.Info("Navigating.", zap.String("url", url))
	if err := b.driver.Navigate(ctx, url); err != nil {
		b.logger.Error("Navigation failed.", zap.String("url", url), zap.Error(err))
		return err
	}
	b.logger.Info("Navigation complete.", zap.String("url", url))
	return nil
}

func (b *BasePage) Click(ctx context.Context, selector string) error {
	b.logger.Info("Clicking element.", zap.String("selector", selector))
	return b.driver.Click(ctx, selector)
}

func (b *BasePage) Fill(ctx context.Context, selector, text string) error {
	b.logger.Info("Filling input.", zap.String("selector", selector), zap.String("text", text))
	return b.driver.Fill(ctx, selector, text)
}

// WaitForElement waits for selector to become visible. A non-positive
// timeout uses the page default.
func (b *BasePage) WaitForElement(ctx context.Context, selector string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = b.timeout
	}
	b.logger.Debug("Waiting for element.", zap.String("selector", selector), zap.Duration("timeout", timeout))
	if !b.driver.WaitForVisible(ctx, selector, timeout) {
		b.logger.Error("Element not found.", zap.String("selector", selector), zap.Duration("timeout", timeout))
		return false
	}
	return true
}

func (b *BasePage) Text(ctx context.Context, selector string) (string, error) {
	b.logger.Debug("Reading text.", zap.String("selector", selector))
	return b.driver.TextContent(ctx, selector)
}

// ElementCount returns the number of matches for selector, or zero when the
// driver fails.
func (b *BasePage) ElementCount(ctx context.Context, selector string) int {
	n, err := b.driver.LocatorCount(ctx, selector)
	if err != nil {
		b.logger.Error("Failed to count elements.", zap.String("selector", selector), zap.Error(err))
		return 0
	}
	b.logger.Info("Counted elements.", zap.String("selector", selector), zap.Int("count", n))
	return n
}

func (b *BasePage) ScrollToBottom(ctx context.Context) error {
	b.logger.Debug("Scrolling to bottom of page.")
	return b.driver.ScrollToBottom(ctx)
}

// WaitForLoad waits for the document to finish loading. The error is
// returned unlogged; callers decide whether it matters.
func (b *BasePage) WaitForLoad(ctx context.Context) error {
	return b.driver.WaitForLoad(ctx)
}
