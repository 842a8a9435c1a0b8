package cmd

import (
	"fmt"
	"strings"

	"superclaude/internal/component"
	"superclaude/internal/installer"
	"superclaude/internal/probe"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var checkLive bool

// checkCmd validates prerequisites without touching the install directory.
// With --live it additionally launches each already-installed server and
// verifies it answers the MCP handshake.
var checkCmd = &cobra.Command{
	Use:   "check [component...]",
	Short: "Check component prerequisites",
	Long: `Check whether the named components (default: all) have their
prerequisites met. Nothing is installed or modified.

With --live, each component that is already installed is launched once over
stdio and must complete the MCP handshake and list its tools.

Examples:
  superclaude check
  superclaude check magic context7
  superclaude check --live magic`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkLive, "live", false, "Probe installed servers over the MCP protocol")
}

func runCheck(cmd *cobra.Command, args []string) error {
	installDir := resolveInstallDir()
	registry := component.DefaultRegistry(installDir)

	selected := args
	if len(selected) == 0 {
		selected = registry.Names()
	}

	var problems []installer.Problem
	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	header := table.Row{"Component", "Prerequisites"}
	if checkLive {
		header = append(header, "Live")
	}
	t.AppendHeader(header)

	for _, name := range selected {
		c, ok := registry.Get(name)
		if !ok {
			problems = append(problems, installer.Problem{
				Component:   name,
				Description: fmt.Sprintf("unknown component (available: %v)", registry.Names()),
			})
			row := table.Row{name, text.FgRed.Sprint("unknown component")}
			if checkLive {
				row = append(row, "-")
			}
			t.AppendRow(row)
			continue
		}

		prereqStatus := text.FgGreen.Sprint("ok")
		if valid, componentProblems := c.ValidatePrerequisites(); !valid {
			prereqStatus = text.FgRed.Sprint(strings.Join(componentProblems, "; "))
			for _, p := range componentProblems {
				problems = append(problems, installer.Problem{Component: name, Description: p})
			}
		}

		row := table.Row{name, prereqStatus}
		if checkLive {
			row = append(row, liveStatus(cmd, installDir, name, &problems))
		}
		t.AppendRow(row)
	}

	t.Render()

	if len(problems) > 0 {
		return &installer.PrerequisiteError{Problems: problems}
	}
	return nil
}

// liveStatus probes one installed server and renders the outcome as a table
// cell. Probe failures are recorded as problems so check --live exits
// non-zero.
func liveStatus(cmd *cobra.Command, installDir, name string, problems *[]installer.Problem) string {
	def, err := component.LoadServerDefinition(installDir, name)
	if err != nil {
		return text.FgYellow.Sprint("not installed")
	}

	report, err := probe.Verify(cmd.Context(), def, GetVersion())
	if err != nil {
		*problems = append(*problems, installer.Problem{Component: name, Description: err.Error()})
		return text.FgRed.Sprint(err.Error())
	}
	return text.FgGreen.Sprintf("%d tools", len(report.Tools))
}
