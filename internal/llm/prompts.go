package llm

import (
	_ "embed"
	"strings"

	"contract-backend/internal/analysis"
)

var (
	//go:embed prompts/classify.txt
	promptClassify string
	//go:embed prompts/premium.txt
	promptPremium string
	//go:embed prompts/free.txt
	promptFree string
)

// ClassificationLimit caps how many characters of the contract the classifier sees.
const ClassificationLimit = 2000

const jsonOnlyInstruction = "Important: Provide only the JSON object in your response, without any additional text or formatting. Do not wrap it in markdown code fences."

// ClassificationPrompt asks for a single contract type label.
func ClassificationPrompt(contractText string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(promptClassify))
	b.WriteString("\n\nContract text:\n")
	b.WriteString(truncateRunes(contractText, ClassificationLimit))
	return b.String()
}

// AnalysisPrompt renders the template for tier. Tiers other than premium get the free
// template. The full contract text comes last.
func AnalysisPrompt(contractText string, tier analysis.Tier, contractType string) string {
	template := promptFree
	if tier == analysis.TierPremium {
		template = promptPremium
	}
	body := strings.ReplaceAll(template, "{{CONTRACT_TYPE}}", strings.TrimSpace(contractType))

	var b strings.Builder
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\n")
	b.WriteString(jsonOnlyInstruction)
	b.WriteString("\n\nContract text:\n")
	b.WriteString(contractText)
	return b.String()
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
