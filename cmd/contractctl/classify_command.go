package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file.pdf>",
		Short: "Detect the contract type of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readContract(args[0])
			if err != nil {
				return err
			}
			orch, err := ctx.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			label, err := orch.Classify(cmd.Context(), ctx.user(), file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}
