// File: internal/artifacts/capturer.go
package artifacts

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
)

// Capturer saves screenshots for steps. Capture is best effort: every failure
// is logged here and returned as a *CaptureError, and the caller decides
// whether to record the step without an artifact.
type Capturer struct {
	dir    string
	clock  clock.PassiveClock
	logger *zap.Logger
}

// NewCapturer creates a capturer writing into dir. A nil clock uses wall time.
func NewCapturer(dir string, clk clock.PassiveClock, logger *zap.Logger) *Capturer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capturer{dir: dir, clock: clk, logger: logger.Named("artifacts")}
}

// Dir returns the directory step screenshots are written to.
func (c *Capturer) Dir() string { return c.dir }

// CaptureStep captures into the capturer's directory using FileName for the
// given step and outcome.
func (c *Capturer) CaptureStep(ctx context.Context, target schemas.Screenshotter, stepName string, outcome schemas.Outcome) (string, error) {
	dest := filepath.Join(c.dir, FileName(stepName, string(outcome), c.clock.Now()))
	return c.Capture(ctx, target, dest)
}

// Capture writes a PNG of target to destinationPath and returns the path on
// success. On failure it returns "" and a *CaptureError. It never panics.
func (c *Capturer) Capture(ctx context.Context, target schemas.Screenshotter, destinationPath string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			path = ""
			err = &CaptureError{Path: destinationPath, Reason: ReasonPanic, Err: fmt.Errorf("%v", r)}
		}
		if err != nil {
			c.logger.Warn("Failed to capture screenshot.", zap.String("path", destinationPath), zap.Error(err))
		}
	}()

	if target == nil {
		return "", &CaptureError{Path: destinationPath, Reason: ReasonNoTarget}
	}
	if err := ctx.Err(); err != nil {
		return "", &CaptureError{Path: destinationPath, Reason: ReasonScreenshot, Err: err}
	}

	img, err := target.Screenshot(ctx)
	if err != nil {
		return "", &CaptureError{Path: destinationPath, Reason: ReasonScreenshot, Err: err}
	}
	if len(img) == 0 {
		return "", &CaptureError{Path: destinationPath, Reason: ReasonEmpty}
	}

	if err := WriteFileAtomic(destinationPath, img, 0o644); err != nil {
		return "", &CaptureError{Path: destinationPath, Reason: ReasonWrite, Err: err}
	}

	c.logger.Info("Captured screenshot.", zap.String("path", destinationPath), zap.Int("bytes", len(img)))
	return destinationPath, nil
}
