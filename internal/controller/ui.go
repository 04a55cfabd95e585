// Package controller provides output adapters for displaying coverage results.
package controller

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "linecov.dev/pkg/linecov/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeMerge
	ModeView
	ModeList
)

func (s StartMode) title() string {
	switch s {
	case ModeMerge:
		return "linecov - merged coverage"
	case ModeView:
		return "linecov - coverage snapshot"
	case ModeList:
		return "linecov - instrumentable lines"
	default:
		return "linecov - line coverage"
	}
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// Mode returns the selected mode.
func (c StartConfig) Mode() StartMode {
	return c.mode
}

// WithRunMode sets the UI to instrumented run mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithMergeMode sets the UI to merge mode.
func WithMergeMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeMerge
	}
}

// WithViewMode sets the UI to snapshot viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// WithListMode sets the UI to static listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

func newStartConfig(options []StartOption) StartConfig {
	config := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines the interface for displaying coverage runs and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayTarget(ctx context.Context, start m.StartInfo)
	DisplayRunResult(ctx context.Context, data *m.CoverageData)
	DisplayCoverage(ctx context.Context, data *m.CoverageData) error
	DisplayExport(ctx context.Context, kind m.ExportKind, output m.Path)
	DisplayWarnings(ctx context.Context, warnings []string)
}

// NewUI returns the interactive UI on a terminal and the plain one otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type coverageRow struct {
	module string
	file   string
	stats  m.CoverageStats
}

func buildCoverageRows(data *m.CoverageData) ([]coverageRow, m.CoverageStats, bool) {
	var (
		rows     []coverageRow
		total    m.CoverageStats
		filtered bool
	)

	for _, module := range data.Modules {
		for _, file := range module.Files {
			stats := file.Stats()
			if stats.Selected != stats.Lines {
				filtered = true
			}

			rows = append(rows, coverageRow{
				module: filepath.Base(string(module.Path)),
				file:   string(file.Path),
				stats:  stats,
			})
			total.Add(stats)
		}
	}

	return rows, total, filtered
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// renderCoverageTable renders one row per file. The Selected column only
// appears when a diff narrowed the lines of interest.
func renderCoverageTable(data *m.CoverageData) string {
	rows, total, filtered := buildCoverageRows(data)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	header := []string{"Module", "File", "Lines", "Executed", "Coverage"}
	alignment := []int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	}

	if filtered {
		header = append(header, "Selected")
		alignment = append(alignment, tablewriter.ALIGN_RIGHT)
	}

	table.SetHeader(header)
	table.SetColumnAlignment(alignment)

	for _, row := range rows {
		line := []string{
			row.module,
			row.file,
			fmt.Sprintf("%d", row.stats.Lines),
			fmt.Sprintf("%d", row.stats.Executed),
			percent(row.stats.Rate()),
		}

		if filtered {
			line = append(line, fmt.Sprintf("%d/%d", row.stats.SelectedAndHit, row.stats.Selected))
		}

		table.Append(line)
	}

	footer := []string{
		fmt.Sprintf("%d module(s)", len(data.Modules)),
		fmt.Sprintf("Total Files %d", len(rows)),
		fmt.Sprintf("%d", total.Lines),
		fmt.Sprintf("%d", total.Executed),
		percent(total.Rate()),
	}

	if filtered {
		footer = append(footer, fmt.Sprintf("%d/%d", total.SelectedAndHit, total.Selected))
	}

	table.SetFooter(footer)
	table.Render()

	return tableBuffer.String()
}

func describeTarget(start m.StartInfo) string {
	if start.IsAttach() {
		return fmt.Sprintf("Attaching to process %d", start.AttachPID)
	}

	return fmt.Sprintf("Running %s", start.Path)
}

func describeRun(data *m.CoverageData) string {
	return fmt.Sprintf("Target finished: %s, exit code %d", data.Outcome, data.ExitCode)
}
