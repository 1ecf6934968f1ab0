package main

import (
	"github.com/spf13/cobra"
)

// newRootCommand returns the command tree and the context its subcommands
// share. Run it with execute so the context is released on every path.
func newRootCommand() (*cobra.Command, *commandContext) {
	var promptsFlag string
	ctx := newCommandContext(&promptsFlag)

	rootCmd := &cobra.Command{
		Use:           "ecosnap",
		Short:         "Classify waste from photos and explain how to recycle it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&promptsFlag, "prompts", "", "TOML file overriding the built-in prompts (default $PROMPTS_FILE)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newGuideCommand())

	return rootCmd, ctx
}

// execute runs the command and then releases the context, whether or not the
// command failed.
func execute(cmd *cobra.Command, ctx *commandContext) error {
	defer ctx.close()
	return cmd.Execute()
}
