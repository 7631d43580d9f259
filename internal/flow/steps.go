package flow

import "fmt"

// Report step names. The parameterised ones are built by the functions
// below so the wording stays identical between runs.
const (
	StepNavigateHome     = "Navigate to eBay home page"
	StepHomeLoaded       = "Validate eBay home page loaded"
	StepResultsDisplayed = "Validate search results displayed"
	StepResultCount      = "Get search result count"
	StepFilteredCount    = "Filtered result count"
	StepFinalScreenshot  = "Take final screenshot"
	StepAutomation       = "Automation execution"
)

func SearchStep(term string) string {
	return fmt.Sprintf("Search for '%s'", term)
}

func KeywordStep(term string) string {
	return fmt.Sprintf("Validate results contain '%s'", term)
}

func FilterStep(value string) string {
	return fmt.Sprintf("Filter by Transmission -> %s", value)
}
