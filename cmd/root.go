package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"superclaude/internal/backup"
	"superclaude/internal/installer"
	"superclaude/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// can tell "nothing happened" failures from ones that need a human.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodePrerequisite indicates unmet prerequisites; nothing was mutated.
	ExitCodePrerequisite = 2
	// ExitCodeManualRecovery indicates a failed rollback; the install
	// directory needs manual attention.
	ExitCodeManualRecovery = 3
)

var (
	flagInstallDir string
	flagBackupDir  string
	flagDebug      bool
	flagQuiet      bool
)

// rootCmd represents the base command for the superclaude installer.
var rootCmd = &cobra.Command{
	Use:   "superclaude",
	Short: "Install and update the superclaude framework components",
	Long: `superclaude provisions a selectable set of framework components
(MCP server integrations) into a local install directory.

Every mutating operation snapshots the install directory first; a failed
installation is rolled back to the pre-run state automatically.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if flagDebug {
			level = logging.LevelDebug
		}
		if flagQuiet {
			level = logging.LevelError
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "superclaude version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var prereqErr *installer.PrerequisiteError
	if errors.As(err, &prereqErr) {
		return ExitCodePrerequisite
	}

	var recoveryErr *installer.ManualRecoveryError
	if errors.As(err, &recoveryErr) {
		return ExitCodeManualRecovery
	}

	return ExitCodeError
}

// defaultInstallDir is where the framework lands when --install-dir is not
// given.
func defaultInstallDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(homeDir, ".claude")
}

// resolveInstallDir applies the flag or the default.
func resolveInstallDir() string {
	if flagInstallDir != "" {
		return flagInstallDir
	}
	return defaultInstallDir()
}

// resolveBackupDir applies the flag or derives the default from the install
// directory.
func resolveBackupDir(installDir string) string {
	if flagBackupDir != "" {
		return flagBackupDir
	}
	return backup.DefaultBackupDir(installDir)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagInstallDir, "install-dir", "", "Install directory (default: ~/.claude)")
	rootCmd.PersistentFlags().StringVar(&flagBackupDir, "backup-dir", "", "Backup archive directory (default: <install-dir>.backups)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
