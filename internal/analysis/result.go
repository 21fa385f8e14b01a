package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the structured analysis of one contract. Risks, Opportunities and Summary
// are always set; the remaining fields are only requested from premium analyses.
//
// JSON shape:
//
//	{
//	  "risks": [{"risk": "string", "explanation": "string"}],
//	  "opportunities": [{"opportunity": "string", "explanation": "string"}],
//	  "summary": "string",
//	  "overallScore": "1-100",
//	  "recommendations": ["string"],
//	  "keyClauses": ["string"],
//	  "legalCompliance": "string",
//	  "negotiationPoints": ["string"],
//	  "contractDuration": "string",
//	  "terminationConditions": "string",
//	  "financialTerms": {"description": "string", "details": ["string"]},
//	  "performanceMetrics": ["string"],
//	  "specificClauses": "string"
//	}
type Result struct {
	Risks         []Risk        `json:"risks"`
	Opportunities []Opportunity `json:"opportunities"`
	Summary       Text          `json:"summary"`
	OverallScore  Text          `json:"overallScore,omitempty"`

	Recommendations       TextList        `json:"recommendations,omitempty"`
	KeyClauses            TextList        `json:"keyClauses,omitempty"`
	LegalCompliance       Text            `json:"legalCompliance,omitempty"`
	NegotiationPoints     TextList        `json:"negotiationPoints,omitempty"`
	ContractDuration      Text            `json:"contractDuration,omitempty"`
	TerminationConditions Text            `json:"terminationConditions,omitempty"`
	FinancialTerms        *FinancialTerms `json:"financialTerms,omitempty"`
	PerformanceMetrics    TextList        `json:"performanceMetrics,omitempty"`
	SpecificClauses       Text            `json:"specificClauses,omitempty"`
}

type Risk struct {
	Risk        Text `json:"risk"`
	Explanation Text `json:"explanation"`
}

type Opportunity struct {
	Opportunity Text `json:"opportunity"`
	Explanation Text `json:"explanation"`
}

type FinancialTerms struct {
	Description Text     `json:"description"`
	Details     TextList `json:"details"`
}

// UnmarshalJSON also accepts a bare value as the description and an array as the details.
func (f *FinancialTerms) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*f = FinancialTerms{}
		return nil
	case trimmed[0] == '[':
		var details TextList
		if err := json.Unmarshal(trimmed, &details); err != nil {
			return err
		}
		*f = FinancialTerms{Details: details}
		return nil
	case trimmed[0] == '{':
		type plain FinancialTerms
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*f = FinancialTerms(p)
		return nil
	}
	var description Text
	if err := description.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	*f = FinancialTerms{Description: description}
	return nil
}

// UnmarshalJSON accepts a bare value as the risk itself with an unknown explanation.
func (r *Risk) UnmarshalJSON(data []byte) error {
	label, explanation, err := decodeItem(data, "risk")
	if err != nil {
		return err
	}
	*r = Risk{Risk: label, Explanation: explanation}
	return nil
}

// UnmarshalJSON accepts a bare value as the opportunity itself with an unknown explanation.
func (o *Opportunity) UnmarshalJSON(data []byte) error {
	label, explanation, err := decodeItem(data, "opportunity")
	if err != nil {
		return err
	}
	*o = Opportunity{Opportunity: label, Explanation: explanation}
	return nil
}

// decodeItem reads a risk or opportunity entry. Objects use labelKey and "explanation";
// anything else becomes the label. Absent keys and empty bare values default to "Unknown".
func decodeItem(data []byte, labelKey string) (Text, Text, error) {
	trimmed := bytes.TrimSpace(data)
	label, explanation := Text(unknownField), Text(unknownField)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]Text
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return "", "", err
		}
		if v, ok := fields[labelKey]; ok {
			label = v
		}
		if v, ok := fields["explanation"]; ok {
			explanation = v
		}
		return label, explanation, nil
	}
	var bare Text
	if err := bare.UnmarshalJSON(trimmed); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(string(bare)) != "" {
		label = bare
	}
	return label, explanation, nil
}

// Text is a string that also decodes from numbers, booleans and nested values,
// which keep their compact JSON form. Models are loose with scalar types.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return fmt.Errorf("decode text: %w", err)
	}
	*t = Text(buf.String())
	return nil
}

// TextList decodes from an array of loosely typed values or from a single value.
type TextList []Text

func (l *TextList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Text
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var one Text
	if err := one.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	*l = TextList{one}
	return nil
}

// FromMap decodes a parsed model response into a Result. Missing lists come back empty.
func FromMap(parsed map[string]any) (Result, error) {
	payload, err := json.Marshal(parsed)
	if err != nil {
		return Result{}, fmt.Errorf("encode parsed response: %w", err)
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("decode parsed response: %w", err)
	}
	if result.Risks == nil {
		result.Risks = []Risk{}
	}
	if result.Opportunities == nil {
		result.Opportunities = []Opportunity{}
	}
	return result, nil
}
