package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"contract-backend/internal/analysis"
)

const explanationWidth = 72

func renderTable(title string, headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{{
		Number:           columns,
		WidthMax:         explanationWidth,
		WidthMaxEnforcer: text.WrapSoft,
		AlignHeader:      text.AlignLeft,
	}})
	return tw.Render()
}

// renderAnalysis prints the overview, the risk and opportunity lists, and any premium
// sections that were filled in.
func renderAnalysis(out analyzeOutput) string {
	overview := [][]string{
		{"Contract type", out.ContractType},
		{"Tier", string(out.Tier)},
		{"Model", out.AIModel},
		{"Summary", string(out.Summary)},
	}
	if out.OverallScore != "" {
		overview = append(overview, []string{"Overall score", string(out.OverallScore)})
	}
	if out.Degraded {
		overview = append(overview, []string{"Degraded", "yes"})
	}

	risks := make([][]string, 0, len(out.Risks))
	for _, r := range out.Risks {
		risks = append(risks, []string{string(r.Risk), string(r.Explanation)})
	}
	opportunities := make([][]string, 0, len(out.Opportunities))
	for _, o := range out.Opportunities {
		opportunities = append(opportunities, []string{string(o.Opportunity), string(o.Explanation)})
	}

	sections := []string{
		renderTable("Analysis", []string{"Field", "Value"}, overview),
		renderTable("Risks", []string{"Risk", "Explanation"}, risks),
		renderTable("Opportunities", []string{"Opportunity", "Explanation"}, opportunities),
	}
	if details := premiumRows(out.Result); len(details) > 0 {
		sections = append(sections, renderTable("Details", []string{"Section", "Content"}, details))
	}
	return strings.Join(sections, "\n")
}

func premiumRows(r analysis.Result) [][]string {
	var rows [][]string
	addText := func(name string, v analysis.Text) {
		if v != "" {
			rows = append(rows, []string{name, string(v)})
		}
	}
	addList := func(name string, v analysis.TextList) {
		if len(v) == 0 {
			return
		}
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = "- " + string(item)
		}
		rows = append(rows, []string{name, strings.Join(items, "\n")})
	}

	addList("Recommendations", r.Recommendations)
	addList("Key clauses", r.KeyClauses)
	addText("Legal compliance", r.LegalCompliance)
	addList("Negotiation points", r.NegotiationPoints)
	addText("Contract duration", r.ContractDuration)
	addText("Termination conditions", r.TerminationConditions)
	if r.FinancialTerms != nil {
		addText("Financial terms", r.FinancialTerms.Description)
		addList("Financial details", r.FinancialTerms.Details)
	}
	addList("Performance metrics", r.PerformanceMetrics)
	addText("Specific clauses", r.SpecificClauses)
	return rows
}
