package browser

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

// launchFlag is a single Chromium command line switch. A false bool value
// removes the switch.
type launchFlag struct {
	Name  string
	Value interface{}
}

// personaFor builds the fingerprint presented by tabs of a browser started
// with cfg.
func personaFor(cfg config.BrowserConfig) schemas.Persona {
	return schemas.Persona{
		UserAgent: cfg.UserAgent,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
	}.WithDefaults()
}

// launchFlags lists the switches layered on top of chromedp's defaults, in
// the order they are applied. Later entries win.
func launchFlags(cfg config.BrowserConfig) []launchFlag {
	persona := personaFor(cfg)

	flags := []launchFlag{
		{"headless", cfg.Headless},
		// chromedp enables this by default; it shows the automation infobar
		// and flips navigator.webdriver.
		{"enable-automation", false},
		{"disable-blink-features", "AutomationControlled"},
		{"disable-extensions", true},
		{"disable-gpu", cfg.Headless},
		{"window-size", fmt.Sprintf("%d,%d", persona.Width, persona.Height)},
		{"user-agent", persona.UserAgent},
		{"lang", persona.Locale},
	}

	for _, arg := range cfg.Args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimLeft(parts[0], "-")
		if len(parts) == 2 {
			flags = append(flags, launchFlag{name, parts[1]})
		} else {
			flags = append(flags, launchFlag{name, true})
		}
	}

	// Needed inside containers.
	if runtime.GOOS == "linux" {
		flags = append(flags,
			launchFlag{"no-sandbox", true},
			launchFlag{"disable-dev-shm-usage", true},
			launchFlag{"disable-setuid-sandbox", true},
		)
	}

	return flags
}

// DefaultAllocatorOptions assembles the exec allocator options for cfg:
// chromedp's defaults followed by the configured switches and, if set, the
// browser binary path.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range launchFlags(cfg) {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
