package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultSummary is used when no summary can be recovered from a response.
	DefaultSummary = "Error analyzing contract"
	unknownField   = "Unknown"
)

const quotedValue = `"((?:[^"\\]|\\.)*)"`

var (
	risksBlock         = regexp.MustCompile(`(?s)"risks"\s*:\s*\[(.*?)\]`)
	opportunitiesBlock = regexp.MustCompile(`(?s)"opportunities"\s*:\s*\[(.*?)\]`)
	riskField          = regexp.MustCompile(`"risk"\s*:\s*` + quotedValue)
	opportunityField   = regexp.MustCompile(`"opportunity"\s*:\s*` + quotedValue)
	explanationField   = regexp.MustCompile(`"explanation"\s*:\s*` + quotedValue)
	summaryField       = regexp.MustCompile(`"summary"\s*:\s*` + quotedValue)
)

// Fallback recovers what it can from a response that failed to parse. It never fails:
// lists default to empty, item fields to "Unknown" and the summary to DefaultSummary.
func Fallback(raw string) Result {
	result := Result{
		Risks:         []Risk{},
		Opportunities: []Opportunity{},
		Summary:       DefaultSummary,
	}

	for _, item := range blockItems(risksBlock, raw) {
		result.Risks = append(result.Risks, Risk{
			Risk:        Text(fieldOr(riskField, item)),
			Explanation: Text(fieldOr(explanationField, item)),
		})
	}
	for _, item := range blockItems(opportunitiesBlock, raw) {
		result.Opportunities = append(result.Opportunities, Opportunity{
			Opportunity: Text(fieldOr(opportunityField, item)),
			Explanation: Text(fieldOr(explanationField, item)),
		})
	}
	if m := summaryField.FindStringSubmatch(raw); m != nil {
		if summary := unescape(m[1]); strings.TrimSpace(summary) != "" {
			result.Summary = Text(summary)
		}
	}
	return result
}

// blockItems finds the array body for a list field and splits it into object fragments.
func blockItems(block *regexp.Regexp, raw string) []string {
	m := block.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	var items []string
	for _, part := range strings.Split(m[1], "},") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

func fieldOr(field *regexp.Regexp, item string) string {
	if m := field.FindStringSubmatch(item); m != nil {
		return unescape(m[1])
	}
	return unknownField
}

func unescape(s string) string {
	if out, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return out
	}
	return s
}
