package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	m "linecov.dev/pkg/linecov/internal/model"
)

// reservedLines is the height taken by the title and the help footer.
const reservedLines = 4

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	config StartConfig
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.config = newStartConfig(options)

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(_ context.Context) {}

// Wait returns immediately; the pager blocks inside DisplayCoverage.
func (p *TUI) Wait(_ context.Context) {}

// DisplayTarget announces the target about to be instrumented.
func (p *TUI) DisplayTarget(ctx context.Context, start m.StartInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintln(p.output, titleStyle.Render(describeTarget(start)))
}

// DisplayRunResult prints how the target terminated.
func (p *TUI) DisplayRunResult(ctx context.Context, data *m.CoverageData) {
	if err := ctx.Err(); err != nil {
		return
	}

	line := describeRun(data)
	if data.Outcome != m.OutcomeNormal || data.ExitCode != 0 {
		line = errorStyle.Render(line)
	}

	_, _ = fmt.Fprintln(p.output, line)
}

// DisplayCoverage shows the coverage table, in a pager when it does not
// fit the terminal.
func (p *TUI) DisplayCoverage(ctx context.Context, data *m.CoverageData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content := "No coverage collected\n"
	if len(data.Modules) > 0 {
		content = renderCoverageTable(data)
	}

	model := newCoverageModel(p.config.mode.title(), content)

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.plain())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// DisplayExport reports a written export.
func (p *TUI) DisplayExport(ctx context.Context, kind m.ExportKind, output m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintf(p.output, "Exported %s coverage to %s\n", kind, output)
}

// DisplayWarnings prints the collected warnings.
func (p *TUI) DisplayWarnings(ctx context.Context, warnings []string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(warnings) == 0 {
		return
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(warnStyle.Bold(true).Render(fmt.Sprintf("%d warning(s):", len(warnings))))
	b.WriteString("\n")

	for _, warning := range warnings {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render(warning))
		b.WriteString("\n")
	}

	_, _ = fmt.Fprint(p.output, b.String())
}

// coverageModel is a scrollable view over the rendered coverage table.
type coverageModel struct {
	title    string
	content  string
	viewport viewport.Model
	height   int
	width    int
}

func newCoverageModel(title, content string) coverageModel {
	model := coverageModel{title: title, content: content}
	model.viewport = viewport.New(0, 0)
	model.viewport.SetContent(content)

	return model
}

func (cm coverageModel) resize(width, height int) coverageModel {
	cm.width = width
	cm.height = height
	cm.viewport.Width = width
	cm.viewport.Height = max(height-reservedLines, 1)

	return cm
}

// needsPagination returns true if the table is too large to fit on screen.
func (cm coverageModel) needsPagination() bool {
	if cm.height == 0 {
		return false
	}

	return lipgloss.Height(cm.content) > cm.height-reservedLines
}

func (cm coverageModel) Init() tea.Cmd {
	return nil
}

func (cm coverageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return cm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return cm, tea.Quit
		case "g", "home":
			cm.viewport.GotoTop()
			return cm, nil
		case "G", "end":
			cm.viewport.GotoBottom()
			return cm, nil
		}
	}

	var cmd tea.Cmd

	cm.viewport, cmd = cm.viewport.Update(msg)

	return cm, cmd
}

func (cm coverageModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(cm.title))
	b.WriteString("\n\n")
	b.WriteString(cm.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%3.f%% | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit",
		cm.viewport.ScrollPercent()*100)))

	return b.String()
}

func (cm coverageModel) plain() string {
	return titleStyle.Render(cm.title) + "\n\n" + cm.content
}
