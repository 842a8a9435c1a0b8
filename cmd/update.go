package cmd

import (
	"errors"
	"fmt"
	"os"

	"superclaude/internal/config"

	"github.com/spf13/cobra"
)

// updateCmd re-runs installation over an existing install. The component
// set comes from the metadata recorded by the last committed run unless the
// caller selects explicitly; the run carries the same backup and rollback
// guarantees as install.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an existing installation",
	Long: `Re-run installation for the components recorded by the last committed
run. Use --mcp to update a different selection instead.

Like install, update snapshots the install directory first and rolls back on
any failure, so a broken update never leaves a half-applied state.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVarP(&installConfigPath, "config", "c", "", "Path to install-config.yaml (default: <install-dir>/install-config.yaml)")
	updateCmd.Flags().StringArrayVar(&installServers, "mcp", nil, "MCP server component to update (repeatable)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	installDir := resolveInstallDir()
	if err := ensureDirExists(installDir); err != nil {
		return err
	}

	cfg, err := loadSelection(installDir)
	if err != nil {
		return err
	}

	if len(cfg.SelectedMCPServers) == 0 {
		meta, err := config.LoadMetadata(installDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%s has never been installed into; run 'superclaude install' first", installDir)
			}
			return err
		}
		cfg.SelectedMCPServers = meta.Components
	}
	if len(cfg.SelectedMCPServers) == 0 {
		return fmt.Errorf("previous installation recorded no components; pass --mcp to select")
	}

	return executeRun(cmd, installDir, cfg)
}
