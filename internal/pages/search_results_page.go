// internal/pages/search_results_page.go
package pages

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/api/schemas"
	"github.com/xkilldash9x/ebay-flow/internal/config"
)

const (
	ResultsListSelector = `ul.srp-results`
	ResultItemsSelector = `ul.srp-results div.su-card-container`
	ResultCountSelector = `h1.srp-controls__count-heading span:first-child`
	FilterPanelSelector = `div.srp-rail__left`

	// resultTitleSelector is relative to ResultsListSelector.
	resultTitleSelector = `div.su-card-container__header span.su-styled-text.primary`

	// TransmissionSection is the facet heading that expands the options.
	TransmissionSection = "Transmission"

	// KeywordTitleLimit is how many titles the keyword check inspects.
	KeywordTitleLimit = 20
)

var firstNumber = regexp.MustCompile(`\d+`)

// ParseResultCount extracts the first integer from a heading such as
// "1,023 results for mazda mx-5". It returns 0 when there is none.
func ParseResultCount(text string) int {
	match := firstNumber.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// SearchResultsPage is the listing page shown after a search.
type SearchResultsPage struct {
	BasePage
	resultsTimeout time.Duration
	filterTimeout  time.Duration
}

func NewSearchResultsPage(driver schemas.Driver, logger *zap.Logger, timeouts config.TimeoutsConfig) *SearchResultsPage {
	p := &SearchResultsPage{
		BasePage:       NewBasePage(driver, logger, timeouts.Default),
		resultsTimeout: timeouts.Results,
		filterTimeout:  timeouts.Filter,
	}
	if p.resultsTimeout <= 0 {
		p.resultsTimeout = 20 * time.Second
	}
	if p.filterTimeout <= 0 {
		p.filterTimeout = 15 * time.Second
	}
	return p
}

// AreSearchResultsDisplayed reports whether at least one result card is
// visible.
func (s *SearchResultsPage) AreSearchResultsDisplayed(ctx context.Context) bool {
	s.logger.Info("Validating search results are displayed.")
	if !s.WaitForElement(ctx, ResultItemsSelector, s.resultsTimeout) {
		s.logger.Warn("No search results found.")
		return false
	}
	count := s.DisplayedResultCount(ctx)
	s.logger.Info("Result items displayed.", zap.Int("count", count))
	return count > 0
}

// SearchResultCount reads the total from the count heading. Zero means the
// count could not be read.
func (s *SearchResultsPage) SearchResultCount(ctx context.Context) int {
	text, err := s.Text(ctx, ResultCountSelector)
	if err != nil {
		s.logger.Error("Failed to read result count.", zap.Error(err))
		return 0
	}
	count := ParseResultCount(text)
	if count == 0 {
		s.logger.Warn("Could not extract count from text.", zap.String("text", text))
		return 0
	}
	s.logger.Info("Total search results.", zap.Int("count", count), zap.String("text", text))
	return count
}

// DisplayedResultCount is the number of result cards on the current page.
func (s *SearchResultsPage) DisplayedResultCount(ctx context.Context) int {
	return s.ElementCount(ctx, ResultItemsSelector)
}

// ResultTitles returns up to limit trimmed, non-empty result titles in page
// order. The listing is fetched in a single round trip and parsed locally.
func (s *SearchResultsPage) ResultTitles(ctx context.Context, limit int) []string {
	markup, err := s.driver.OuterHTML(ctx, ResultsListSelector)
	if err != nil {
		s.logger.Error("Failed to read result list.", zap.Error(err))
		return nil
	}
	titles, err := ParseResultTitles(markup, limit)
	if err != nil {
		s.logger.Error("Failed to parse result list.", zap.Error(err))
		return nil
	}
	s.logger.Info("Retrieved result titles.", zap.Int("count", len(titles)), zap.Int("limit", limit))
	return titles
}

// ParseResultTitles extracts result titles from the markup of the results
// list. A non-positive limit returns every title.
func ParseResultTitles(markup string, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	var titles []string
	doc.Find(resultTitleSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if title := strings.TrimSpace(sel.Text()); title != "" {
			titles = append(titles, title)
		}
		return limit <= 0 || len(titles) < limit
	})
	return titles, nil
}

// ResultsContainKeyword reports whether any of the first KeywordTitleLimit
// titles contains keyword, ignoring case.
func (s *SearchResultsPage) ResultsContainKeyword(ctx context.Context, keyword string) bool {
	titles := s.ResultTitles(ctx, KeywordTitleLimit)
	needle := strings.ToLower(keyword)

	matches := 0
	for _, t := range titles {
		if strings.Contains(strings.ToLower(t), needle) {
			matches++
		}
	}
	if matches == 0 {
		s.logger.Warn("No results contain keyword.", zap.String("keyword", keyword), zap.Int("titles", len(titles)))
		return false
	}
	s.logger.Info("Results contain keyword.", zap.String("keyword", keyword), zap.Int("matches", matches))
	return true
}

// FilterByTransmission expands the transmission facet in the left rail and
// selects value. It reports whether the option was clicked.
func (s *SearchResultsPage) FilterByTransmission(ctx context.Context, value string) bool {
	s.logger.Info("Applying transmission filter.", zap.String("value", value))

	if !s.WaitForElement(ctx, FilterPanelSelector, s.filterTimeout) {
		s.logger.Error("Filter panel did not load.")
		return false
	}

	if err := s.ScrollToBottom(ctx); err != nil {
		s.logger.Warn("Could not scroll the filter panel into view.", zap.Error(err))
	}
	s.settle(ctx, "filter panel")

	// The facet may already be expanded; not finding the heading is fine.
	if expanded, err := s.driver.ClickText(ctx, TransmissionSection); err != nil {
		s.logger.Warn("Could not expand transmission filter.", zap.Error(err))
	} else if expanded {
		s.logger.Info("Expanded transmission filter.")
		s.settle(ctx, "transmission facet")
	}

	clicked, err := s.driver.ClickText(ctx, value)
	if err != nil {
		s.logger.Error("Error applying transmission filter.", zap.String("value", value), zap.Error(err))
		return false
	}
	if !clicked {
		s.logger.Warn("Transmission option not found in filter.", zap.String("value", value))
		return false
	}

	s.settle(ctx, "filter click")
	s.logger.Info("Filter applied.", zap.String("value", value))
	return true
}

// ApplyTransmissionAndGetCount applies the filter and reads the refreshed
// total. applied is false when the filter could not be set, in which case
// count is 0.
func (s *SearchResultsPage) ApplyTransmissionAndGetCount(ctx context.Context, value string) (count int, applied bool) {
	if !s.FilterByTransmission(ctx, value) {
		return 0, false
	}
	s.settle(ctx, "filtered results")
	return s.SearchResultCount(ctx), true
}

// settle waits for the page to load between filter interactions. eBay keeps
// background requests open, so a load failure is logged and the flow goes on.
func (s *SearchResultsPage) settle(ctx context.Context, stage string) {
	if err := s.WaitForLoad(ctx); err != nil {
		s.logger.Warn("Page did not finish loading.", zap.String("stage", stage), zap.Error(err))
	}
}
