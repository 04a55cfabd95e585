package controller

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	m "linecov.dev/pkg/linecov/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig

	warning func(a ...interface{}) string
	failure func(a ...interface{}) string
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{
		cmd:     cmd,
		warning: color.New(color.FgYellow).SprintFunc(),
		failure: color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.config = newStartConfig(options)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayTarget announces the target about to be instrumented.
func (s *SimpleUI) DisplayTarget(ctx context.Context, start m.StartInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", describeTarget(start))
}

// DisplayRunResult prints how the target terminated.
func (s *SimpleUI) DisplayRunResult(ctx context.Context, data *m.CoverageData) {
	if err := ctx.Err(); err != nil {
		return
	}

	line := describeRun(data)
	if data.Outcome != m.OutcomeNormal || data.ExitCode != 0 {
		line = s.failure(line)
	}

	s.printf("%s\n", line)
}

// DisplayCoverage prints the per-file coverage table.
func (s *SimpleUI) DisplayCoverage(ctx context.Context, data *m.CoverageData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(data.Modules) == 0 {
		s.printf("No coverage collected\n")
		return nil
	}

	s.printf("\n%s", renderCoverageTable(data))

	return nil
}

// DisplayExport reports a written export.
func (s *SimpleUI) DisplayExport(ctx context.Context, kind m.ExportKind, output m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Exported %s coverage to %s\n", kind, output)
}

// DisplayWarnings prints the collected warnings.
func (s *SimpleUI) DisplayWarnings(ctx context.Context, warnings []string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(warnings) == 0 {
		return
	}

	s.printf("\n%s\n", s.warning(fmt.Sprintf("%d warning(s):", len(warnings))))

	for _, warning := range warnings {
		s.printf("  %s\n", s.warning(warning))
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
