package search

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// BudgetRange is a parsed price constraint. Max is +Inf for open-ended
// phrasings like "over 300".
type BudgetRange struct {
	Min float64
	Max float64
}

// In reports whether a price falls inside the range, bounds inclusive.
func (b *BudgetRange) In(price float64) bool {
	return price >= b.Min && price <= b.Max
}

// Bounded reports whether the range has a finite upper bound.
func (b *BudgetRange) Bounded() bool {
	return !math.IsInf(b.Max, 1)
}

// Midpoint is the center of a bounded range, used for the budget-fit boost.
func (b *BudgetRange) Midpoint() float64 {
	return (b.Min + b.Max) / 2
}

// amountPattern matches "500", "$1,299.99", "2k" with an optional currency
// symbol. Group 1 is the number, group 2 the thousands suffix.
const amountPattern = `[$€£]?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`

var (
	reBetween = regexp.MustCompile(`(?i)between\s+` + amountPattern + `\s+and\s+` + amountPattern)
	reSpan    = regexp.MustCompile(`(?i)` + amountPattern + `\s*(?:-|–|to)\s*` + amountPattern)
	reUnder   = regexp.MustCompile(`(?i)(?:under|below|less than|at most|up to|cheaper than|within|max(?:imum)?)\s+` + amountPattern)
	reOver    = regexp.MustCompile(`(?i)(?:over|above|more than|at least|min(?:imum)?|starting (?:at|from)|from)\s+` + amountPattern)
	reAround  = regexp.MustCompile(`(?i)(?:around|about|approximately|roughly|~)\s*` + amountPattern)
	reBudget  = regexp.MustCompile(`(?i)\bbudget\s*(?:is|of|:)?\s*` + amountPattern + `|` + amountPattern + `\s*budget\b`)
)

// ParseBudget extracts a price range from free text, or nil when the text
// carries no budget phrasing. Bounded forms are tried before open-ended ones
// so "between 200 and 500" never half-parses as "under 500".
func ParseBudget(text string) *BudgetRange {
	if m := reBetween.FindStringSubmatch(text); m != nil {
		return newRange(parseAmount(m[1], m[2]), parseAmount(m[3], m[4]))
	}
	if m := reSpan.FindStringSubmatch(text); m != nil {
		return newRange(parseAmount(m[1], m[2]), parseAmount(m[3], m[4]))
	}
	if m := reUnder.FindStringSubmatch(text); m != nil {
		return &BudgetRange{Min: 0, Max: parseAmount(m[1], m[2])}
	}
	if m := reOver.FindStringSubmatch(text); m != nil {
		return &BudgetRange{Min: parseAmount(m[1], m[2]), Max: math.Inf(1)}
	}
	if m := reAround.FindStringSubmatch(text); m != nil {
		v := parseAmount(m[1], m[2])
		return &BudgetRange{Min: v * 0.8, Max: v * 1.2}
	}
	// "my budget is 500" and "500 budget" both state a cap.
	if m := reBudget.FindStringSubmatch(text); m != nil {
		number, thousands := m[1], m[2]
		if number == "" {
			number, thousands = m[3], m[4]
		}
		return &BudgetRange{Min: 0, Max: parseAmount(number, thousands)}
	}
	return nil
}

func newRange(lo, hi float64) *BudgetRange {
	if lo > hi {
		lo, hi = hi, lo
	}
	return &BudgetRange{Min: lo, Max: hi}
}

func parseAmount(number, thousands string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
	if err != nil {
		return 0
	}
	if thousands != "" {
		v *= 1000
	}
	return v
}
