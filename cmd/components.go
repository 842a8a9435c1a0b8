package cmd

import (
	"strings"

	"superclaude/internal/component"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// componentsCmd lists the closed set of installable components.
var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List installable components",
	Long: `List every component this installer knows about, with its upstream
package reference and the current prerequisite status. The set is fixed at
build time; selection at install time filters it.`,
	RunE: runComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	registry := component.DefaultRegistry(resolveInstallDir())

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Package", "Description", "Prerequisites"})

	for _, c := range registry.All() {
		ok, problems := c.ValidatePrerequisites()
		status := text.FgGreen.Sprint("ok")
		if !ok {
			status = text.FgRed.Sprint(strings.Join(problems, "; "))
		}
		t.AppendRow(table.Row{c.Name(), c.PackageRef(), c.Description(), status})
	}

	t.Render()
	return nil
}
