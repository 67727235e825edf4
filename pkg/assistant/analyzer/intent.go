package analyzer

import "strings"

// Intent is the closed set of user intentions the assistant recognizes.
// Everything the model or the rule table produces is normalized onto this
// set; free-form intent strings never travel past this package.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentProductSearch   Intent = "product_search"
	IntentRecommendation  Intent = "recommendation"
	IntentPriceQuery      Intent = "price_query"
	IntentOrderTracking   Intent = "order_tracking"
	IntentGeneralQuestion Intent = "general_question"
)

// ParseIntent maps a free-form string onto the closed set. Unrecognized
// values normalize to general_question with ok=false.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentGreeting:
		return IntentGreeting, true
	case IntentProductSearch:
		return IntentProductSearch, true
	case IntentRecommendation:
		return IntentRecommendation, true
	case IntentPriceQuery:
		return IntentPriceQuery, true
	case IntentOrderTracking:
		return IntentOrderTracking, true
	case IntentGeneralQuestion:
		return IntentGeneralQuestion, true
	}
	return IntentGeneralQuestion, false
}

// NeedsRetrieval reports whether answering this intent involves searching
// the catalog or knowledge base.
func (i Intent) NeedsRetrieval() bool {
	switch i {
	case IntentProductSearch, IntentRecommendation, IntentPriceQuery, IntentGeneralQuestion:
		return true
	}
	return false
}

// ProductRelated reports whether the intent is about finding products.
func (i Intent) ProductRelated() bool {
	switch i {
	case IntentProductSearch, IntentRecommendation, IntentPriceQuery:
		return true
	}
	return false
}
