package cmd

import (
	"fmt"
	"os"
	"time"

	"superclaude/internal/config"
	"superclaude/internal/installer"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	installConfigPath string
	installServers    []string
)

// installCmd performs a full installation run: backup, validate, install the
// selected components, finalize, commit.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install selected framework components",
	Long: `Install the selected MCP server components into the install directory.

The selection comes from --mcp flags, or from an install-config.yaml when no
flags are given. The install directory is snapshotted before anything is
written; any failure rolls the directory back to its pre-run state.

Examples:
  superclaude install --mcp magic
  superclaude install --mcp magic --mcp context7
  superclaude install --config ./install-config.yaml`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVarP(&installConfigPath, "config", "c", "", "Path to install-config.yaml (default: <install-dir>/install-config.yaml)")
	installCmd.Flags().StringArrayVar(&installServers, "mcp", nil, "MCP server component to install (repeatable)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	installDir := resolveInstallDir()
	if err := ensureDirExists(installDir); err != nil {
		return err
	}

	cfg, err := loadSelection(installDir)
	if err != nil {
		return err
	}
	if len(cfg.SelectedMCPServers) == 0 {
		return fmt.Errorf("nothing selected: pass --mcp or provide an install-config.yaml")
	}

	return executeRun(cmd, installDir, cfg)
}

// loadSelection builds the install configuration from the config file and
// the --mcp flags. Flags override the file's selection.
func loadSelection(installDir string) (*config.InstallConfig, error) {
	configPath := installConfigPath
	if configPath == "" {
		configPath = installDir
	}
	cfg, err := config.LoadInstallConfig(configPath)
	if err != nil {
		return nil, err
	}
	if len(installServers) > 0 {
		cfg.SelectedMCPServers = installServers
	}
	return &cfg, nil
}

// executeRun drives one installer run with progress output and renders the
// outcome. Shared by install and update.
func executeRun(cmd *cobra.Command, installDir string, cfg *config.InstallConfig) error {
	inst, err := installer.New(installer.Options{
		InstallDir: installDir,
		BackupDir:  resolveBackupDir(installDir),
		Version:    GetVersion(),
	})
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	if !flagQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Installing %d components into %s...", len(cfg.SelectedMCPServers), installDir)
		s.Start()
	}

	result, runErr := inst.Run(cfg)

	if s != nil {
		s.Stop()
	}

	printRunResult(cmd, result, runErr)
	return runErr
}

// printRunResult renders the outcome of a run for humans.
func printRunResult(cmd *cobra.Command, result *installer.Result, runErr error) {
	out := cmd.OutOrStdout()

	if len(result.Problems) > 0 {
		fmt.Fprintln(out, text.FgRed.Sprint("Prerequisite validation failed; nothing was installed:"))
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Component", "Problem"})
		for _, p := range result.Problems {
			t.AppendRow(table.Row{p.Component, p.Description})
		}
		t.Render()
		return
	}

	if runErr != nil {
		fmt.Fprintf(out, "%s state=%s", text.FgRed.Sprint("Installation failed."), result.State)
		if result.FailedComponent != "" {
			fmt.Fprintf(out, " component=%s", result.FailedComponent)
		}
		fmt.Fprintln(out)
		if result.State == installer.StateRolledBack {
			fmt.Fprintln(out, "The install directory was rolled back to its pre-run state.")
		}
		if result.State == installer.StateManualRecovery {
			fmt.Fprintf(out, "%s Restore manually from %s\n",
				text.FgRed.Sprint("The install directory needs manual recovery."), result.BackupPath)
		}
		return
	}

	fmt.Fprintf(out, "%s Installed: %v\n", text.FgGreen.Sprint("Installation committed."), result.Installed)
	fmt.Fprintf(out, "Backup retained at %s\n", result.BackupPath)
}

// ensureDirExists gives install/update a clearer error than the installer's
// own MkdirAll when the path exists but is a file.
func ensureDirExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", path)
	}
	return nil
}
