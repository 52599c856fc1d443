package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <audit-id>",
		Short: "Render a saved audit as a report",
		Long: `Export renders a saved audit in any report format.

When --output names an existing directory the file name is derived from
the audited URL and today's date, e.g. audit-seo-https---example-shop-com-2026-04-01.md.

Examples:
  # Print audit 3 as Markdown
  shopaudit export 3 -f markdown

  # Write audit 3 as an HTML report into ./reports
  shopaudit export 3 -f html -o reports`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("format", "f", string(report.FormatMarkdown),
		"Report format: text, json, markdown or html")
	cmd.Flags().StringP("output", "o", "",
		"Output file or existing directory (default: stdout)")
	addStoreFlags(cmd)

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid audit ID %q: must be a positive integer", args[0])
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger(cmd)
	store, err := openStoreFromFlags(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	audit, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("audit with ID %d not found", id)
		}
		return err
	}

	if info, statErr := os.Stat(output); output != "" && statErr == nil && info.IsDir() {
		output = filepath.Join(output, report.FileName(audit.URL, format, time.Now()))
	}

	dest, closeDest, err := reportDestination(cmd.OutOrStdout(), output)
	if err != nil {
		return err
	}
	defer closeDest()

	writer, err := report.NewWriter(format, dest)
	if err != nil {
		return err
	}
	if _, err := writer.Write(&audit.AuditResult); err != nil {
		return fmt.Errorf("failed to render audit %d: %w", id, err)
	}

	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported audit %d to %s\n", id, output)
	}
	return nil
}
