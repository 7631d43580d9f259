// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

const defaultLaunchTimeout = 30 * time.Second

// Manager owns the Chromium process and hands out tabs.
type Manager struct {
	logger   *zap.Logger
	cfg      config.BrowserConfig
	timeouts config.TimeoutsConfig
	persona  schemas.Persona

	// allocatorCtx owns the process; browserCtx is the first chromedp
	// context on it and every tab is derived from that.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc

	// wg tracks open tabs for a graceful shutdown.
	wg sync.WaitGroup
}

var _ schemas.BrowserManager = (*Manager)(nil)

// NewManager starts Chromium and checks that it answers. Any failure is
// returned wrapping ErrLaunch.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.Interface) (*Manager, error) {
	m := &Manager{
		logger:   logger.Named("browser"),
		cfg:      cfg.Browser(),
		timeouts: cfg.Flow().Timeouts,
		persona:  personaFor(cfg.Browser()),
	}

	if err := m.launchBrowser(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	return m, nil
}

func (m *Manager) launchTimeout() time.Duration {
	if m.cfg.LaunchTimeout > 0 {
		return m.cfg.LaunchTimeout
	}
	return defaultLaunchTimeout
}

func (m *Manager) contextOptions() []chromedp.ContextOption {
	sugar := m.logger.Sugar()
	opts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Debugf),
		// chromedp reports unknown CDP events as errors; they are noise here.
		chromedp.WithErrorf(sugar.Debugf),
	}
	if m.cfg.Debug {
		opts = append(opts, chromedp.WithDebugf(sugar.Debugf))
	}
	return opts
}

// launchBrowser prepares allocator options and starts the browser process.
func (m *Manager) launchBrowser(ctx context.Context) error {
	m.logger.Info("Launching browser.",
		zap.Bool("headless", m.cfg.Headless),
		zap.Duration("slow_mo", m.cfg.SlowMo),
		zap.String("exec_path", m.cfg.ExecPath))

	m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, DefaultAllocatorOptions(m.cfg)...)
	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocatorCtx, m.contextOptions()...)

	// The first Run on browserCtx allocates the process, whose lifetime is
	// then bound to browserCtx. It must not run under a derived deadline.
	if err := startTarget(ctx, m.browserCtx, m.launchTimeout()); err != nil {
		m.release()
		return fmt.Errorf("browser failed to start: %w", err)
	}

	liveCtx, cancel := context.WithTimeout(m.browserCtx, m.launchTimeout())
	defer cancel()
	if err := chromedp.Run(liveCtx, chromedp.Navigate("about:blank")); err != nil {
		m.release()
		return fmt.Errorf("browser failed to respond: %w", err)
	}

	m.logger.Info("Browser launched and responsive.")
	return nil
}

// startTarget performs the first Run on target in the background and gives
// up after timeout or when ctx ends.
func startTarget(ctx, target context.Context, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(target) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("no response after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) release() {
	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocatorCancel != nil {
		m.allocatorCancel()
	}
}

// NewPage opens a tab with the configured persona applied.
func (m *Manager) NewPage(ctx context.Context) (schemas.Driver, error) {
	tabCtx, cancel := chromedp.NewContext(m.browserCtx)

	if err := startTarget(ctx, tabCtx, m.launchTimeout()); err != nil {
		cancel()
		return nil, &DriverError{Op: "new page", Err: err}
	}

	setupCtx, setupCancel := context.WithTimeout(tabCtx, m.launchTimeout())
	defer setupCancel()
	if err := chromedp.Run(setupCtx, applyPersona(m.persona, m.logger)); err != nil {
		cancel()
		return nil, &DriverError{Op: "apply persona", Err: err}
	}

	m.wg.Add(1)
	p := &Page{
		ctx:     tabCtx,
		cancel:  cancel,
		logger:  m.logger.Named("page"),
		pacer:   newPacer(m.cfg.SlowMo),
		timeout: m.timeouts.Default,
		navWait: m.timeouts.Navigation,
		onClose: m.wg.Done,
	}
	m.logger.Debug("Opened tab.")
	return p, nil
}

// Shutdown waits for open tabs to be closed, bounded by ctx, then closes the
// browser and terminates the process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser shutdown initiated.")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	var closeErr error
	cancelled := make(chan error, 1)
	go func() { cancelled <- chromedp.Cancel(m.browserCtx) }()
	select {
	case err := <-cancelled:
		if err != nil && !errors.Is(err, context.Canceled) {
			closeErr = fmt.Errorf("close browser: %w", err)
		}
	case <-ctx.Done():
		closeErr = fmt.Errorf("close browser: %w", ctx.Err())
	}

	m.release()
	<-m.allocatorCtx.Done()

	m.logger.Info("Browser stopped.")
	return closeErr
}
