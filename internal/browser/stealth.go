// internal/browser/stealth.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
)

// navigatorScript is registered on every new document. It removes the
// obvious automation markers the storefront checks before serving results.
const navigatorScript = `(() => {
  const languages = %s;
  try {
    Object.defineProperty(Object.getPrototypeOf(navigator), 'webdriver', { get: () => undefined });
    Object.defineProperty(navigator, 'languages', { get: () => languages });
  } catch (e) {}
  if (!window.chrome) {
    window.chrome = { runtime: {} };
  }
})();`

// applyPersona makes a tab present persona consistently at the HTTP,
// emulation, and script layers.
func applyPersona(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.Tasks{
		network.Enable(),
		setAcceptLanguage(persona, logger),
		setUserAgent(persona, logger),
		setDeviceMetrics(persona, logger),
		setLocale(persona, logger),
		injectNavigatorScript(persona, logger),
		page.SetWebLifecycleState(page.WebLifecycleStateActive),
		chromedp.ActionFunc(func(ctx context.Context) error {
			logger.Debug("Persona applied to tab.", zap.String("user_agent", persona.UserAgent))
			return nil
		}),
	}
}

// acceptLanguage formats languages as an Accept-Language value with
// decreasing q weights, floored at 0.7.
func acceptLanguage(languages []string) string {
	if len(languages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(languages[0])
	for i := 1; i < len(languages); i++ {
		q := 1.0 - float64(i)*0.1
		if q < 0.7 {
			q = 0.7
		}
		fmt.Fprintf(&b, ",%s;q=%.1f", languages[i], q)
	}
	return b.String()
}

func setAcceptLanguage(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		value := acceptLanguage(persona.Languages)
		if value == "" {
			return nil
		}
		headers := network.Headers{"Accept-Language": value}
		if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
			logger.Error("Failed to set extra HTTP headers.", zap.Error(err))
			return fmt.Errorf("persona: set extra http headers: %w", err)
		}
		return nil
	})
}

func setUserAgent(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		err := emulation.SetUserAgentOverride(persona.UserAgent).
			WithAcceptLanguage(strings.Join(persona.Languages, ",")).
			Do(ctx)
		if err != nil {
			logger.Error("Failed to override user agent.", zap.Error(err))
			return fmt.Errorf("persona: set user agent override: %w", err)
		}
		return nil
	})
}

func setDeviceMetrics(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if persona.Width <= 0 || persona.Height <= 0 {
			return nil
		}
		orientation := emulation.OrientationTypeLandscapePrimary
		if persona.Height > persona.Width {
			orientation = emulation.OrientationTypePortraitPrimary
		}
		err := emulation.SetDeviceMetricsOverride(int64(persona.Width), int64(persona.Height), 1.0, false).
			WithScreenOrientation(&emulation.ScreenOrientation{Type: orientation, Angle: 0}).
			Do(ctx)
		if err != nil {
			logger.Error("Failed to override device metrics.", zap.Error(err))
			return fmt.Errorf("persona: set device metrics: %w", err)
		}
		return nil
	})
}

func setLocale(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if persona.Locale == "" {
			return nil
		}
		if err := emulation.SetLocaleOverride().WithLocale(persona.Locale).Do(ctx); err != nil {
			// Some Chromium builds refuse a locale override that matches the
			// process locale. The Accept-Language header already covers it.
			logger.Debug("Locale override rejected.", zap.String("locale", persona.Locale), zap.Error(err))
		}
		return nil
	})
}

func injectNavigatorScript(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		languages, err := json.Marshal(persona.Languages)
		if err != nil {
			return fmt.Errorf("persona: marshal languages: %w", err)
		}
		script := fmt.Sprintf(navigatorScript, languages)
		if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
			logger.Error("Failed to register navigator script.", zap.Error(err))
			return fmt.Errorf("persona: add script on new document: %w", err)
		}
		return nil
	})
}
