package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The grammar is an ordered list of (matcher, builder) rules. The first rule
// whose pattern matches and whose builder accepts the captures wins; a
// builder rejecting its captures (e.g. a non-positive amount) falls through
// to the remaining rules. The grammar is intentionally rigid: no synonyms,
// no fuzzy matching, so replies stay predictable.
type rule struct {
	pattern *regexp.Regexp
	build   func(match []string) (Intent, bool)
}

var rules = []rule{
	{
		pattern: regexp.MustCompile(`^(?:help|/help)$`),
		build: func([]string) (Intent, bool) {
			return Intent{Kind: Help}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^balance$`),
		build: func([]string) (Intent, bool) {
			return Intent{Kind: GetBalance}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^budgets$`),
		build: func([]string) (Intent, bool) {
			return Intent{Kind: GetBudgets}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^budget\s+([a-z][a-z0-9\s-]{1,50}?)\s+([\d,.]+)$`),
		build: func(match []string) (Intent, bool) {
			amount, ok := parseAmount(match[2])
			if !ok {
				return Intent{}, false
			}
			return Intent{
				Kind:     SetBudget,
				Category: strings.TrimSpace(match[1]),
				Amount:   amount,
			}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^top\s+(\d{1,2})$`),
		build: func(match []string) (Intent, bool) {
			limit, err := strconv.Atoi(match[1])
			if err != nil {
				return Intent{}, false
			}
			return Intent{Kind: GetTop, Limit: limit}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:summary|report)$`),
		build: func([]string) (Intent, bool) {
			return Intent{Kind: GetSummary, MonthOffset: 0}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^(?:summary|report)\s+last\s+month$`),
		build: func([]string) (Intent, bool) {
			return Intent{Kind: GetSummary, MonthOffset: -1}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^spent\s+([\d,.]+)\s+on\s+([a-z][a-z0-9\s-]{1,50})$`),
		build: func(match []string) (Intent, bool) {
			amount, ok := parseAmount(match[1])
			if !ok {
				return Intent{}, false
			}
			category := strings.TrimSpace(match[2])
			return Intent{
				Kind:        AddExpense,
				Amount:      amount,
				Category:    category,
				Description: category,
			}, true
		},
	},
	{
		pattern: regexp.MustCompile(`^earned\s+([\d,.]+)\s+([a-z][a-z0-9\s-]{1,50})$`),
		build: func(match []string) (Intent, bool) {
			amount, ok := parseAmount(match[1])
			if !ok {
				return Intent{}, false
			}
			return Intent{
				Kind:        AddIncome,
				Amount:      amount,
				Category:    "income",
				Description: strings.TrimSpace(match[2]),
			}, true
		},
	},
}

// Parse classifies raw text into exactly one Intent. It is total: any input
// that matches no rule yields Unknown.
func Parse(text string) Intent {
	// Collapse whitespace runs so extra spaces between tokens still match,
	// and lowercase so matching and captures are case-insensitive.
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))

	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}

		if parsed, ok := r.build(match); ok {
			return parsed
		}
	}

	return Intent{Kind: Unknown}
}

// parseAmount parses a numeric literal, allowing comma grouping. Amounts
// must be positive.
func parseAmount(raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}

	return amount, true
}
