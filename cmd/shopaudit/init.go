package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/config"
)

//go:embed templates/shopaudit.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a shopaudit configuration file",
		Long: `Init writes a commented .shopaudit configuration file.

The generated file documents every rule threshold with its default value
and shows how to set cookies and headers for password-protected or preview
storefronts.

Examples:
  # Create .shopaudit in the current directory
  shopaudit init

  # Create the config file at a specific path
  shopaudit init -o ~/.config/shopaudit/config.yaml

  # Overwrite an existing file
  shopaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeConfigTemplate(path, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n\n", path)
	fmt.Fprintln(out, "Adjust rule thresholds there, or add cookies and headers under")
	fmt.Fprintln(out, "sites: for password-protected storefronts.")
	return nil
}

// writeConfigTemplate stores the embedded template at path. Without force
// the file is created exclusively so an existing config is never replaced.
func writeConfigTemplate(path string, force bool) error {
	body, err := configTemplate.ReadFile("templates/shopaudit.yaml")
	if err != nil {
		return fmt.Errorf("read embedded template: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600) //nolint:gosec // path comes from the operator
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
