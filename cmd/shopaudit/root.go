package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/nao1215/shopaudit/internal/log"
)

// NewRootCmd creates the root command for shopaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopaudit",
		Short: "On-page SEO auditor for e-commerce storefronts",
		Long: `shopaudit fetches a storefront page, evaluates it against a fixed set of
SEO rules and reports a 0-100 score, every issue found and a prioritized
action plan.

Results are saved locally so later audits can be listed, compared and
re-exported. 'shopaudit serve' exposes the same engine over HTTP.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger builds the redacting logger for cmd, writing to its stderr.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if getBoolFlag(cmd, "log-json") {
		return applog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}
