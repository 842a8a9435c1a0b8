package cmd

import (
	"fmt"

	"superclaude/internal/backup"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// backupCmd groups the manual archive operations. The installer snapshots
// automatically before every run; these subcommands exist for explicit
// snapshots and disaster recovery.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage install directory backups",
	Long: `Create, list and restore snapshots of the install directory.

Archives are gzip-compressed tarballs stored outside the install directory,
so restoring one can safely wipe and rebuild the target.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the install directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newBackupManager()
		if err != nil {
			return err
		}
		archive, err := m.Create()
		if err != nil {
			return err
		}
		members, err := backup.Verify(archive)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d members)\n", archive, members)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backup archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newBackupManager()
		if err != nil {
			return err
		}
		infos, err := m.List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No backup archives found.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Archive", "Size", "Created"})
		for _, info := range infos {
			t.AppendRow(table.Row{info.Name, fmt.Sprintf("%d B", info.Size), info.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		t.Render()
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Replace the install directory contents with an archive's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newBackupManager()
		if err != nil {
			return err
		}
		if err := m.Restore(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", m.InstallDir(), args[0])
		return nil
	},
}

func newBackupManager() (*backup.Manager, error) {
	installDir := resolveInstallDir()
	return backup.NewManager(installDir, resolveBackupDir(installDir))
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}
