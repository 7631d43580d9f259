// File: internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
)

// Page is a single browser tab driven over CDP. It implements
// schemas.Driver.
type Page struct {
	ctx     context.Context // tab context, carries the chromedp target
	cancel  context.CancelFunc
	logger  *zap.Logger
	pacer   *rate.Limiter
	timeout time.Duration
	navWait time.Duration

	closeOnce sync.Once
	closeErr  error
	onClose   func()
}

var _ schemas.Driver = (*Page)(nil)

// act runs actions after waiting for the pacer. Element interactions and
// navigation go through here so slow_mo applies to them.
func (p *Page) act(ctx context.Context, op, selector string, timeout time.Duration, actions ...chromedp.Action) error {
	if err := p.pacer.Wait(ctx); err != nil {
		return &DriverError{Op: op, Selector: selector, Err: err}
	}
	return p.exec(ctx, op, selector, timeout, actions...)
}

// exec runs actions on the tab bounded by both ctx and timeout.
func (p *Page) exec(ctx context.Context, op, selector string, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return &DriverError{Op: op, Selector: selector, Err: err}
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("Navigating.", zap.String("url", url))
	return p.act(ctx, "navigate", "", p.navWait, chromedp.Navigate(url))
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.act(ctx, "click", selector, p.timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (p *Page) Fill(ctx context.Context, selector, text string) error {
	return p.act(ctx, "fill", selector, p.timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// WaitForVisible reports whether an element matching selector became
// visible within timeout. Failures are logged, not returned.
func (p *Page) WaitForVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = p.timeout
	}
	err := p.exec(ctx, "wait visible", selector, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		p.logger.Debug("Element did not become visible.",
			zap.String("selector", selector),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return false
	}
	return true
}

func (p *Page) TextContent(ctx context.Context, selector string) (string, error) {
	var text string
	err := p.exec(ctx, "text content", selector, p.timeout, chromedp.TextContent(selector, &text, chromedp.ByQuery))
	return text, err
}

func (p *Page) LocatorCount(ctx context.Context, selector string) (int, error) {
	var n int
	err := p.exec(ctx, "count", selector, p.timeout, chromedp.Evaluate(countJS(selector), &n))
	return n, err
}

func (p *Page) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := p.exec(ctx, "outer html", selector, p.timeout, chromedp.OuterHTML(selector, &html, chromedp.ByQuery))
	return html, err
}

func (p *Page) ClickText(ctx context.Context, text string) (bool, error) {
	var clicked bool
	err := p.act(ctx, "click text", text, p.timeout, chromedp.Evaluate(clickTextScript(text), &clicked))
	return clicked, err
}

func (p *Page) ScrollToBottom(ctx context.Context) error {
	return p.act(ctx, "scroll", "", p.timeout, chromedp.Evaluate(scrollToBottomJS, nil))
}

// WaitForLoad polls until the current document reports readyState
// "complete".
func (p *Page) WaitForLoad(ctx context.Context) error {
	var ready bool
	return p.exec(ctx, "wait load", "", p.timeout,
		chromedp.Poll(readyStateComplete, &ready, chromedp.WithPollingInterval(100*time.Millisecond)))
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.exec(ctx, "title", "", p.timeout, chromedp.Title(&title))
	return title, err
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	err := p.exec(ctx, "url", "", p.timeout, chromedp.Location(&url))
	return url, err
}

// Screenshot captures the current viewport as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.exec(ctx, "screenshot", "", p.timeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the tab. It is safe to call more than once.
func (p *Page) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(p.ctx) }()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				p.closeErr = &DriverError{Op: "close", Err: err}
			}
		case <-ctx.Done():
			p.closeErr = &DriverError{Op: "close", Err: ctx.Err()}
		}
		p.cancel()

		if p.onClose != nil {
			p.onClose()
		}
	})
	return p.closeErr
}
