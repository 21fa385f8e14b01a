package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contract-backend/internal/analysis"
)

type analyzeOutput struct {
	ContractType string        `json:"contractType"`
	Tier         analysis.Tier `json:"tier"`
	AIModel      string        `json:"aiModel"`
	Language     string        `json:"language"`
	Degraded     bool          `json:"degraded"`
	analysis.Result
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var contractType string
	var premium bool
	var detect bool
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <file.pdf>",
		Short: "Run a tiered analysis of a contract PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown --format %q (want json or table)", format)
			}
			file, err := readContract(args[0])
			if err != nil {
				return err
			}
			orch, err := ctx.orchestrator(cmd.Context())
			if err != nil {
				return err
			}

			if strings.TrimSpace(contractType) == "" {
				if !detect {
					return errors.New("--type is required unless --detect is set")
				}
				contractType, err = orch.Classify(cmd.Context(), ctx.user(), file)
				if err != nil {
					return err
				}
			}

			report, err := orch.Analyze(cmd.Context(), ctx.user(), file, contractType, analysis.TierFor(premium))
			if err != nil {
				return err
			}
			if report.Degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: model response was not valid JSON; fields were recovered by pattern matching")
			}

			out := analyzeOutput{
				ContractType: report.ContractType,
				Tier:         report.Tier,
				AIModel:      report.Model,
				Language:     report.Language,
				Degraded:     report.Degraded,
				Result:       report.Result,
			}
			if format == "table" {
				fmt.Fprintln(cmd.OutOrStdout(), renderAnalysis(out))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&contractType, "type", "", "Contract type label")
	cmd.Flags().BoolVar(&premium, "premium", false, "Use the premium analysis tier")
	cmd.Flags().BoolVar(&detect, "detect", false, "Detect the contract type first when --type is empty")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	return cmd
}
