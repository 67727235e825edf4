package analyzer

import (
	"fmt"
	"regexp"
	"strconv"

	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

// rule is one row of the fallback classification table. Rules are evaluated
// in order and the first match wins, so more specific intents sit above the
// generic ones.
type rule struct {
	intent     Intent
	match      func(query string, tokens []string) bool
	confidence float64
	reasoning  string
}

func matchPattern(re *regexp.Regexp) func(string, []string) bool {
	return func(query string, _ []string) bool {
		return re.MatchString(query)
	}
}

// matchCategoryToken fires when a token names a known product category.
// "show me watches" never needs a verb pattern to read as a product search.
func matchCategoryToken() func(string, []string) bool {
	return func(_ string, tokens []string) bool {
		for _, t := range tokens {
			if _, ok := embedding.CategoryOf(t); ok {
				return true
			}
		}
		return false
	}
}

// recipientTerms maps pronouns and relations onto a gender preference.
// This vocabulary belongs to the analyzer only; retrieval keeps matching on
// the explicit gender terms.
var recipientTerms = map[string]string{
	"her": embedding.GenderWomen, "hers": embedding.GenderWomen, "she": embedding.GenderWomen,
	"wife": embedding.GenderWomen, "girlfriend": embedding.GenderWomen, "womens": embedding.GenderWomen,
	"mother": embedding.GenderWomen, "mom": embedding.GenderWomen, "sister": embedding.GenderWomen,
	"him": embedding.GenderMen, "his": embedding.GenderMen, "he": embedding.GenderMen,
	"husband": embedding.GenderMen, "boyfriend": embedding.GenderMen, "mens": embedding.GenderMen,
	"father": embedding.GenderMen, "dad": embedding.GenderMen, "brother": embedding.GenderMen,
}

var (
	reGreeting = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|howdy|greetings|good\s+(morning|afternoon|evening))\b`)
	reTracking = regexp.MustCompile(`(?i)\btrack(ing)?\b|\bwhere\s+is\s+my\s+(order|package|parcel)\b|\border\s+(status|number)\b|\bmy\s+(order|delivery|shipment)\b`)
	rePrice    = regexp.MustCompile(`(?i)\bhow\s+much\b|\bprice\b|\bcost(s)?\b|\bexpensive\b|\bcheap(er|est)?\b|\bafford\b`)
	reAdvice   = regexp.MustCompile(`(?i)\brecommend\b|\bsuggest(ion)?s?\b|\badvi[cs]e\b|\bgift\s*(idea)?s?\b|\bwhat\s+should\s+i\b|\bhelp\s+me\s+(choose|pick|find)\b`)
	reBrowse   = regexp.MustCompile(`(?i)\blooking\s+for\b|\bshow\s+me\b|\bdo\s+you\s+(have|sell|carry)\b|\bi\s+(want|need)\b|\bbuy(ing)?\b|\bshop(ping)?\s+for\b|\bbrowse\b|\bsearch(ing)?\s+for\b`)

	reFollowUpMarker = regexp.MustCompile(`(?i)^\s*(what|how)\s+about\b|^\s*(and|also|ok(ay)?|yes|no|why|cheaper|pricier|more|another|instead)\b|\b(them|those|these|that\s+one|it)\b\s*\??\s*$`)
)

// fallbackRules is the deterministic classifier used when the language model
// is unavailable or returns garbage. Order matters.
var fallbackRules = []rule{
	{IntentGreeting, matchPattern(reGreeting), 0.9, "greeting opener matched"},
	{IntentOrderTracking, matchPattern(reTracking), 0.7, "order or shipment wording matched"},
	{IntentPriceQuery, matchPattern(rePrice), 0.65, "pricing wording matched"},
	{IntentRecommendation, matchPattern(reAdvice), 0.65, "advice-seeking wording matched"},
	{IntentProductSearch, matchPattern(reBrowse), 0.6, "browsing wording matched"},
	{IntentProductSearch, matchCategoryToken(), 0.55, "query names a product category"},
}

// RuleBasedAnalysis classifies a query without any model call. It is both
// the degraded-mode path and the baseline the model-backed analyzer falls
// back onto, so it must always return a usable analysis.
func RuleBasedAnalysis(query string, session *store.Session) *QueryAnalysis {
	tokens := embedding.Tokenize(query)

	analysis := &QueryAnalysis{
		Intent:              IntentGeneralQuestion,
		Confidence:          0.5,
		Entities:            map[string]string{},
		ExplicitPreferences: map[string]string{},
		Reasoning:           "Fallback: no rule matched, defaulting to general question",
	}
	for _, r := range fallbackRules {
		if r.match(query, tokens) {
			analysis.Intent = r.intent
			analysis.Confidence = r.confidence
			analysis.Reasoning = "Fallback: " + r.reasoning
			break
		}
	}

	extractEntities(analysis, query, tokens)
	analysis.IsFollowUp = looksLikeFollowUp(query, tokens, session)
	analysis.ShouldStartProductFlow = startsProductFlow(analysis.Intent, analysis.IsFollowUp)
	analysis.InformationNeeds = missingInformation(analysis)
	return analysis
}

// extractEntities pulls category, gender and budget out of the raw query
// using the same vocabulary the indexer uses, so the analysis and the
// retrieval layer never disagree about what a token means.
func extractEntities(analysis *QueryAnalysis, query string, tokens []string) {
	for _, t := range tokens {
		if c, ok := embedding.CategoryOf(t); ok && analysis.ProductCategory == "" {
			analysis.ProductCategory = c
			analysis.Entities["category"] = c
			analysis.ExplicitPreferences["category"] = c
		}
		gender, ok := embedding.GenderOf(t)
		if !ok {
			gender, ok = recipientTerms[t]
		}
		if ok && analysis.Entities["gender"] == "" {
			analysis.Entities["gender"] = gender
			analysis.ExplicitPreferences["gender"] = gender
		}
	}
	if budget := search.ParseBudget(query); budget != nil {
		formatted := formatBudget(budget)
		analysis.Entities["budget"] = formatted
		analysis.ExplicitPreferences["budget"] = formatted
	}
}

func formatBudget(b *search.BudgetRange) string {
	min := strconv.FormatFloat(b.Min, 'f', -1, 64)
	if !b.Bounded() {
		return min + "+"
	}
	return fmt.Sprintf("%s-%s", min, strconv.FormatFloat(b.Max, 'f', -1, 64))
}

// looksLikeFollowUp detects narrowing turns like "under 300?" or "what about
// gold ones". Without prior context nothing can be a follow-up.
func looksLikeFollowUp(query string, tokens []string, session *store.Session) bool {
	if session == nil || !session.HasContext() {
		return false
	}
	if reFollowUpMarker.MatchString(query) {
		return true
	}
	return len(tokens) <= 3
}

func startsProductFlow(intent Intent, isFollowUp bool) bool {
	if isFollowUp {
		return false
	}
	return intent == IntentProductSearch || intent == IntentRecommendation
}

// missingInformation lists what a product flow still has to ask for.
func missingInformation(analysis *QueryAnalysis) []string {
	if !analysis.Intent.ProductRelated() {
		return nil
	}
	var needs []string
	if analysis.ProductCategory == "" {
		needs = append(needs, "product category")
	}
	if _, ok := analysis.ExplicitPreferences["budget"]; !ok {
		needs = append(needs, "budget range")
	}
	if _, ok := analysis.ExplicitPreferences["gender"]; !ok && analysis.Intent == IntentRecommendation {
		needs = append(needs, "who the item is for")
	}
	return needs
}
