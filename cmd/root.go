// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naka-gawa/merged-pr-stats/internal/config"
	"github.com/naka-gawa/merged-pr-stats/internal/gateway"
)

// NewRootCmd builds the root command with its own viper instance, so every
// invocation starts from a clean configuration.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "merged-prs",
		Short: "Counts merged pull requests per author.",
		Long: `merged-prs lists the closed pull requests of one or more GitHub repositories,
keeps those merged since a cutoff date and reports how many each author merged.
The GitHub token is read from the GITHUB_TOKEN environment variable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), v)
		},
	}

	rootCmd.PersistentFlags().BoolP(config.KeyVerbose, "v", false, "Enable verbose/debug logging")
	rootCmd.Flags().String(config.KeySince, "", "Earliest merge date to count (ISO-8601, e.g. 2024-04-01). Defaults to 30 days ago")
	rootCmd.Flags().StringSliceP(config.KeyRepo, "r", nil, "Target repository as owner/name, repeatable (default $GITHUB_REPOSITORY)")
	rootCmd.Flags().String(config.KeyAPI, gateway.APIREST, "GitHub API to query: rest or graphql")
	rootCmd.Flags().Int(config.KeyMaxPages, 0, "Stop after this many pages per repository (0 = until an empty page)")
	rootCmd.Flags().Bool(config.KeyWaitRateLimit, false, "Sleep through secondary rate limits instead of failing")
	rootCmd.Flags().Int(config.KeyConcurrency, 4, "Number of repositories fetched concurrently")

	// Flag errors are impossible here: every key was registered above.
	_ = v.BindPFlags(rootCmd.Flags())
	_ = v.BindPFlags(rootCmd.PersistentFlags())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		var printed *reportedError
		if !errors.As(err, &printed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
