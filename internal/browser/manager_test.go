// internal/browser/manager_test.go
package browser_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/browser"
	"github.com/xkilldash9x/ebay-flow/internal/config"
	"github.com/xkilldash9x/ebay-flow/internal/mocks"
)

const fixturePage = `<!doctype html>
<html>
<head><title>Fixture Store</title></head>
<body>
  <form onsubmit="document.getElementById('echo').textContent = document.getElementById('q').value; return false;">
    <input id="q" placeholder="Search for anything" value="stale">
    <button type="submit">Search</button>
  </form>
  <h1 class="count"><span>1,234 results</span></h1>
  <ul class="results">
    <li>Mazda MX-5 Miata</li>
    <li>Mazda MX-5 RF</li>
    <li>Hidden</li>
  </ul>
  <div id="hidden" style="display:none">secret</div>
  <p id="echo"></p>
  <label onclick="document.getElementById('echo').textContent = 'manual clicked'">Manual</label>
  <div style="height: 3000px"></div>
</body>
</html>`

// findChrome reports whether a Chromium binary chromedp can use is on PATH.
func findChrome() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.Headless = true
	cfg.BrowserCfg.LaunchTimeout = 45 * time.Second
	cfg.FlowCfg.Timeouts.Default = 5 * time.Second
	cfg.FlowCfg.Timeouts.Navigation = 15 * time.Second
	return cfg
}

// setupPage launches a browser, opens one tab, and registers cleanup.
func setupPage(t *testing.T) schemas.Driver {
	t.Helper()
	if !findChrome() {
		t.Skip("Chrome/Chromium not found on PATH.")
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	mgr, err := browser.NewManager(ctx, logger, testConfig())
	if err != nil {
		cancel()
		t.Fatalf("Failed to initialize browser manager: %v", err)
	}

	page, err := mgr.NewPage(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		assert.NoError(t, page.Close(shutdownCtx))
		assert.NoError(t, mgr.Shutdown(shutdownCtx))
		cancel()
	})
	return page
}

func createTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixturePage)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewManager_LaunchFailure(t *testing.T) {
	defaults := testConfig()
	browserCfg := defaults.Browser()
	browserCfg.ExecPath = "/nonexistent/ebay-flow/chrome"
	browserCfg.LaunchTimeout = 10 * time.Second

	cfg := new(mocks.MockConfig)
	cfg.On("Browser").Return(browserCfg)
	cfg.On("Flow").Return(defaults.Flow())

	mgr, err := browser.NewManager(context.Background(), zap.NewNop(), cfg)
	require.Error(t, err)
	assert.Nil(t, mgr)
	assert.True(t, errors.Is(err, browser.ErrLaunch))
	cfg.AssertExpectations(t)
}

func TestPage_Driver(t *testing.T) {
	page := setupPage(t)
	server := createTestServer(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, server.URL))
	require.NoError(t, page.WaitForLoad(ctx))

	t.Run("TitleAndURL", func(t *testing.T) {
		title, err := page.Title(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Fixture Store", title)

		u, err := page.URL(ctx)
		require.NoError(t, err)
		assert.Contains(t, u, server.URL)
	})

	t.Run("Visibility", func(t *testing.T) {
		assert.True(t, page.WaitForVisible(ctx, "ul.results", time.Second))
		assert.False(t, page.WaitForVisible(ctx, "#hidden", 300*time.Millisecond))
		assert.False(t, page.WaitForVisible(ctx, "#missing", 300*time.Millisecond))
	})

	t.Run("Queries", func(t *testing.T) {
		n, err := page.LocatorCount(ctx, "ul.results li")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = page.LocatorCount(ctx, "table.none")
		require.NoError(t, err)
		assert.Zero(t, n)

		text, err := page.TextContent(ctx, "h1.count span:first-child")
		require.NoError(t, err)
		assert.Equal(t, "1,234 results", text)

		html, err := page.OuterHTML(ctx, "ul.results")
		require.NoError(t, err)
		assert.Contains(t, html, "<li>Mazda MX-5 RF</li>")
	})

	t.Run("FillAndClick", func(t *testing.T) {
		require.NoError(t, page.Fill(ctx, `input[placeholder="Search for anything"]`, "mazda mx-5"))
		require.NoError(t, page.Click(ctx, `button[type="submit"]`))

		text, err := page.TextContent(ctx, "#echo")
		require.NoError(t, err)
		assert.Equal(t, "mazda mx-5", text)
	})

	t.Run("ClickText", func(t *testing.T) {
		require.NoError(t, page.ScrollToBottom(ctx))

		clicked, err := page.ClickText(ctx, "Manual")
		require.NoError(t, err)
		assert.True(t, clicked)

		text, err := page.TextContent(ctx, "#echo")
		require.NoError(t, err)
		assert.Equal(t, "manual clicked", text)

		clicked, err = page.ClickText(ctx, "Automatic")
		require.NoError(t, err)
		assert.False(t, clicked)
	})

	t.Run("Screenshot", func(t *testing.T) {
		png, err := page.Screenshot(ctx)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
	})

	t.Run("DriverError", func(t *testing.T) {
		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()

		err := page.Click(short, "#missing")
		var derr *browser.DriverError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "click", derr.Op)
		assert.Equal(t, "#missing", derr.Selector)
	})
}
