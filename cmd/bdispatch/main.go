package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bdispatch",
		Short: "Serve files through the bdispatch request dispatcher",
		Long: `bdispatch serves a local folder or an S3 bucket over HTTP with conditional
and range requests, a readiness check, Prometheus metrics and tracing.

Every BD_* environment variable of a bdapp service applies, flags win over them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bdispatch %s (%s)\n", version, commit)
		},
	}
}
