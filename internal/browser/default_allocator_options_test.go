// internal/browser/default_allocator_options_test.go
package browser

import (
	"runtime"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

// flagValue returns the value of the last flag named name, which is the one
// chromedp ends up using.
func flagValue(flags []launchFlag, name string) (interface{}, bool) {
	var (
		value interface{}
		found bool
	)
	for _, f := range flags {
		if f.Name == name {
			value, found = f.Value, true
		}
	}
	return value, found
}

func TestLaunchFlags(t *testing.T) {
	t.Run("Headless", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{Headless: true})
		v, ok := flagValue(flags, "headless")
		require.True(t, ok)
		assert.Equal(t, true, v)
		v, _ = flagValue(flags, "disable-gpu")
		assert.Equal(t, true, v)
	})

	t.Run("HeadlessDisabled", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{Headless: false})
		v, ok := flagValue(flags, "headless")
		require.True(t, ok)
		assert.Equal(t, false, v, "a false bool removes chromedp's default headless switch")
	})

	t.Run("AutomationMarkersRemoved", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{})
		v, _ := flagValue(flags, "enable-automation")
		assert.Equal(t, false, v)
		v, _ = flagValue(flags, "disable-blink-features")
		assert.Equal(t, "AutomationControlled", v)
	})

	t.Run("PersonaDefaults", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{})
		v, _ := flagValue(flags, "window-size")
		assert.Equal(t, "1920,1080", v)
		v, _ = flagValue(flags, "user-agent")
		assert.Equal(t, schemas.DefaultPersona.UserAgent, v)
		v, _ = flagValue(flags, "lang")
		assert.Equal(t, "en-US", v)
	})

	t.Run("WithWindowAndUserAgent", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{
			Window:    config.WindowConfig{Width: 1280, Height: 720},
			UserAgent: "ebay-flow-test",
		})
		v, _ := flagValue(flags, "window-size")
		assert.Equal(t, "1280,720", v)
		v, _ = flagValue(flags, "user-agent")
		assert.Equal(t, "ebay-flow-test", v)
	})

	t.Run("WithCustomArgs", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{
			Args: []string{"--custom-arg1", "--proxy-server=http://127.0.0.1:8080", "  ", "lang=de-DE"},
		})
		v, ok := flagValue(flags, "custom-arg1")
		require.True(t, ok)
		assert.Equal(t, true, v)
		v, _ = flagValue(flags, "proxy-server")
		assert.Equal(t, "http://127.0.0.1:8080", v)
		v, _ = flagValue(flags, "lang")
		assert.Equal(t, "de-DE", v, "configured args override built-in switches")
		_, ok = flagValue(flags, "")
		assert.False(t, ok, "blank args are skipped")
	})

	t.Run("ContainerFlags", func(t *testing.T) {
		flags := launchFlags(config.BrowserConfig{})
		_, ok := flagValue(flags, "no-sandbox")
		assert.Equal(t, runtime.GOOS == "linux", ok)
	})
}

func TestDefaultAllocatorOptions(t *testing.T) {
	cfg := config.BrowserConfig{Headless: true, Args: []string{"--custom-arg1"}}
	base := len(chromedp.DefaultExecAllocatorOptions) + len(launchFlags(cfg))

	assert.Len(t, DefaultAllocatorOptions(cfg), base)

	cfg.ExecPath = "/opt/chromium/chrome"
	assert.Len(t, DefaultAllocatorOptions(cfg), base+1)
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "", acceptLanguage(nil))
	assert.Equal(t, "en-US", acceptLanguage([]string{"en-US"}))
	assert.Equal(t, "en-US,en;q=0.9,de;q=0.8,fr;q=0.7,es;q=0.7",
		acceptLanguage([]string{"en-US", "en", "de", "fr", "es"}))
}
