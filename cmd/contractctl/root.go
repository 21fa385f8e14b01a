package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contractctl",
		Short:         "Classify and analyze contract PDFs locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.configFlag, "config", "", "Profile path (default ~/.config/contractctl/config.toml, then ./contractctl.toml)")
	rootCmd.PersistentFlags().StringVar(&ctx.providerFlag, "provider", "", "Model provider (gemini or openai); defaults to LLM_PROVIDER")
	rootCmd.PersistentFlags().StringVar(&ctx.modelFlag, "model", "", "Model name; defaults to LLM_MODEL")
	rootCmd.PersistentFlags().StringVar(&ctx.userFlag, "user", "", "User id used for the staging key (default from profile, then cli)")

	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newPromptCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	return rootCmd
}
