package pages

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

const (
	SearchInputSelector  = `input[placeholder="Search for anything"]`
	SearchButtonSelector = `button[type="submit"]`
)

// DefaultHomeURL is the storefront landing page.
const DefaultHomeURL = "https://www.ebay.com/"

// HomePage is the storefront landing page with the search box.
type HomePage struct {
	BasePage
	url         string
	loadTimeout time.Duration
}

// NewHomePage builds the home page object. An empty url uses
// DefaultHomeURL.
func NewHomePage(driver schemas.Driver, logger *zap.Logger, url string, timeouts config.TimeoutsConfig) *HomePage {
	if url == "" {
		url = DefaultHomeURL
	}
	base := NewBasePage(driver, logger, timeouts.Default)
	loadTimeout := timeouts.Home
	if loadTimeout <= 0 {
		loadTimeout = 15 * time.Second
	}
	return &HomePage{BasePage: base, url: url, loadTimeout: loadTimeout}
}

func (h *HomePage) HomeURL() string { return h.url }

func (h *HomePage) NavigateToHome(ctx context.Context) error {
	if err := h.Navigate(ctx, h.url); err != nil {
		return fmt.Errorf("navigate to home page: %w", err)
	}
	return nil
}

// IsHomePageLoaded reports whether the search box became visible.
func (h *HomePage) IsHomePageLoaded(ctx context.Context) bool {
	h.logger.Info("Validating home page is loaded.")
	if !h.WaitForElement(ctx, SearchInputSelector, h.loadTimeout) {
		h.logger.Warn("Home page did not load properly.")
		return false
	}
	h.logger.Info("Home page loaded.")
	return true
}

// SearchForItem types term into the search box and submits it, returning
// once the results document has loaded. If the home page is not showing it
// is loaded first.
func (h *HomePage) SearchForItem(ctx context.Context, term string) error {
	h.logger.Info("Searching.", zap.String("term", term))

	if !h.IsHomePageLoaded(ctx) {
		if err := h.NavigateToHome(ctx); err != nil {
			return err
		}
	}
	if err := h.Fill(ctx, SearchInputSelector, term); err != nil {
		return fmt.Errorf("enter search term: %w", err)
	}
	if err := h.Click(ctx, SearchButtonSelector); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	if err := h.WaitForLoad(ctx); err != nil {
		return fmt.Errorf("wait for results page: %w", err)
	}

	h.logger.Info("Search results page loaded.")
	return nil
}
