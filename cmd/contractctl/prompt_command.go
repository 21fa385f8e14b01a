package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contract-backend/internal/analysis"
	"contract-backend/internal/llm"
)

func newPromptCommand(ctx *commandContext) *cobra.Command {
	var contractType string
	var premium bool
	var classify bool

	cmd := &cobra.Command{
		Use:   "prompt <file.pdf>",
		Short: "Print the rendered prompt for a contract without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readContract(args[0])
			if err != nil {
				return err
			}
			text, err := ctx.extract(cmd.Context(), file)
			if err != nil {
				return err
			}

			if classify {
				fmt.Fprintln(cmd.OutOrStdout(), llm.ClassificationPrompt(text))
				return nil
			}
			if strings.TrimSpace(contractType) == "" {
				return errors.New("--type is required unless --classify is set")
			}
			fmt.Fprintln(cmd.OutOrStdout(), llm.AnalysisPrompt(text, analysis.TierFor(premium), strings.TrimSpace(contractType)))
			return nil
		},
	}

	cmd.Flags().StringVar(&contractType, "type", "", "Contract type label")
	cmd.Flags().BoolVar(&premium, "premium", false, "Render the premium analysis prompt")
	cmd.Flags().BoolVar(&classify, "classify", false, "Render the classification prompt instead")
	return cmd
}
