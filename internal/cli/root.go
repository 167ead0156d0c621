// Package cli implements the quotectl operator commands.
package cli

import "github.com/spf13/cobra"

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quotectl",
		Short:         "Operator tools for the quote assistant",
		Long:          "quotectl talks to the quote engine locally: chat with it in a terminal, price a vehicle directly, or inspect what the extractors read from a phrase.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newChatCmd(),
		newQuoteCmd(),
		newParseCmd(),
	)

	return rootCmd
}
