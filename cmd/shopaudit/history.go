package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved audits",
		Long: `History lists saved audits, newest first.

Examples:
  # Show the ten most recent audits
  shopaudit history

  # Show every saved audit of one page
  shopaudit history -u example-shop.com -n 50

  # Print the list as JSON
  shopaudit history --json

  # List every page with saved audits (sqlite store)
  shopaudit history --urls`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", database.DefaultRecentLimit,
		"Maximum number of audits to list")
	cmd.Flags().StringP("url", "u", "",
		"Only list audits of this URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output the list in JSON format")
	cmd.Flags().Bool("urls", false,
		"List every audited URL instead of audits")
	addStoreFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	rawURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	listURLs, err := cmd.Flags().GetBool("urls")
	if err != nil {
		return err
	}

	var url string
	if rawURL != "" {
		if url, err = fetcher.Normalize(rawURL); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	logger := newLogger(cmd)
	store, err := openStoreFromFlags(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if listURLs {
		return listAuditedURLs(ctx, cmd.OutOrStdout(), store)
	}

	audits, err := loadHistory(ctx, store, url, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if audits == nil {
			audits = []*model.StoredAudit{}
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(audits)
		return err
	}
	printHistory(out, audits, url)
	return nil
}

// urlLister is implemented by stores that can enumerate audited URLs.
type urlLister interface {
	ListAuditedURLs(ctx context.Context) ([]string, error)
}

// listAuditedURLs prints every URL with at least one saved audit.
func listAuditedURLs(ctx context.Context, out io.Writer, store database.Store) error {
	lister, ok := store.(urlLister)
	if !ok {
		return errors.New("listing URLs requires the sqlite store")
	}
	urls, err := lister.ListAuditedURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list audited URLs: %w", err)
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No audited pages found in the database.")
		return nil
	}
	fmt.Fprintf(out, "Audited pages (%d):\n\n", len(urls))
	for _, url := range urls {
		fmt.Fprintf(out, "  - %s\n", url)
	}
	fmt.Fprintln(out, "\nUse 'shopaudit history -u <url>' to see the audits of a page.")
	return nil
}

// loadHistory returns the saved audits of url, or the most recent audits
// of any URL when url is empty.
func loadHistory(ctx context.Context, store database.Store, url string, limit int) ([]*model.StoredAudit, error) {
	var (
		audits []*model.StoredAudit
		err    error
	)
	if url == "" {
		audits, err = store.GetRecent(ctx, limit)
	} else {
		audits, err = store.History(ctx, url, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	return audits, nil
}

// printHistory writes audits as an aligned table.
func printHistory(out io.Writer, audits []*model.StoredAudit, url string) {
	if len(audits) == 0 {
		if url != "" {
			fmt.Fprintf(out, "No audit history found for %s\n", url)
		} else {
			fmt.Fprintln(out, "No saved audits found.")
		}
		fmt.Fprintln(out, "\nUse 'shopaudit audit <url>' to audit a page.")
		return
	}

	if url != "" {
		fmt.Fprintf(out, "Audit history for %s (%d audits):\n\n", url, len(audits))
	} else {
		fmt.Fprintf(out, "Recent audits (%d):\n\n", len(audits))
	}
	fmt.Fprintf(out, "  %-6s  %-20s  %-5s  %-4s  %-4s  %-4s  %s\n", "ID", "Date", "Score", "C", "W", "O", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, a := range audits {
		fmt.Fprintf(out, "  %-6d  %-20s  %-5d  %-4d  %-4d  %-4d  %s\n",
			a.ID,
			a.Timestamp.Format("2006-01-02 15:04:05"),
			a.Score,
			a.Summary.Critical,
			a.Summary.Warnings,
			a.Summary.Optimizations,
			a.URL,
		)
	}

	fmt.Fprintln(out, "\nUse 'shopaudit compare <url>' to compare the latest two audits of a page.")
	fmt.Fprintln(out, "Use 'shopaudit export <id>' to render a saved audit.")
}
