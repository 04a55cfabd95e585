package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"path"
	"time"

	"gopkg.in/yaml.v3"
	m "linecov.dev/pkg/linecov/internal/model"
)

// Exporter writes coverage data in one output format.
type Exporter interface {
	Export(ctx context.Context, data *m.CoverageData, output m.Path) error
	// DefaultOutputPath is used when no output is requested.
	DefaultOutputPath(prefix string) m.Path
}

// NewExporters returns one exporter per supported kind.
func NewExporters(fsAdapter SourceFSAdapter, store SnapshotStore) map[m.ExportKind]Exporter {
	return map[m.ExportKind]Exporter{
		m.ExportBinary:    &binaryExporter{store: store},
		m.ExportCobertura: &coberturaExporter{SourceFSAdapter: fsAdapter, now: time.Now},
		m.ExportSummary:   &summaryExporter{SourceFSAdapter: fsAdapter},
	}
}

type binaryExporter struct {
	store SnapshotStore
}

func (e *binaryExporter) Export(ctx context.Context, data *m.CoverageData, output m.Path) error {
	return e.store.Save(ctx, output, data)
}

func (e *binaryExporter) DefaultOutputPath(prefix string) m.Path {
	return m.Path(prefix + ".cov")
}

type coberturaExporter struct {
	SourceFSAdapter
	now func() time.Time
}

type coberturaReport struct {
	XMLName      xml.Name           `xml:"coverage"`
	LineRate     string             `xml:"line-rate,attr"`
	BranchRate   string             `xml:"branch-rate,attr"`
	LinesCovered int                `xml:"lines-covered,attr"`
	LinesValid   int                `xml:"lines-valid,attr"`
	Version      string             `xml:"version,attr"`
	Timestamp    int64              `xml:"timestamp,attr"`
	Sources      []string           `xml:"sources>source"`
	Packages     []coberturaPackage `xml:"packages>package"`
}

type coberturaPackage struct {
	Name     string           `xml:"name,attr"`
	LineRate string           `xml:"line-rate,attr"`
	Classes  []coberturaClass `xml:"classes>class"`
}

type coberturaClass struct {
	Name     string          `xml:"name,attr"`
	Filename string          `xml:"filename,attr"`
	LineRate string          `xml:"line-rate,attr"`
	Methods  struct{}        `xml:"methods"`
	Lines    []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int `xml:"number,attr"`
	Hits   int `xml:"hits,attr"`
}

func rate(stats m.CoverageStats) string {
	return fmt.Sprintf("%.4f", stats.Rate())
}

func (e *coberturaExporter) Export(ctx context.Context, data *m.CoverageData, output m.Path) error {
	total := data.Stats()
	report := coberturaReport{
		LineRate:     rate(total),
		BranchRate:   "0",
		LinesCovered: total.Executed,
		LinesValid:   total.Lines,
		Version:      "linecov",
		Timestamp:    e.now().Unix(),
		Sources:      []string{""},
	}

	for _, module := range data.Modules {
		pkg := coberturaPackage{Name: string(module.Path), LineRate: rate(module.Stats())}

		for _, file := range module.Files {
			class := coberturaClass{
				Name:     path.Base(string(file.Path)),
				Filename: string(file.Path),
				LineRate: rate(file.Stats()),
			}

			for _, line := range file.Lines {
				hits := 0
				if line.Executed {
					hits = 1
				}

				class.Lines = append(class.Lines, coberturaLine{Number: line.Number, Hits: hits})
			}

			pkg.Classes = append(pkg.Classes, class)
		}

		report.Packages = append(report.Packages, pkg)
	}

	content, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Error("Failed to encode cobertura report", "error", err)
		return fmt.Errorf("encode cobertura report: %w", err)
	}

	content = append([]byte(xml.Header), content...)

	if err := e.WriteFile(ctx, output, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("write cobertura report %s: %w", output, err)
	}

	return nil
}

func (e *coberturaExporter) DefaultOutputPath(prefix string) m.Path {
	return m.Path(prefix + ".xml")
}

type summaryExporter struct {
	SourceFSAdapter
}

// Summary is the document written by the summary exporter.
type Summary struct {
	Name     string          `yaml:"name"`
	Outcome  string          `yaml:"outcome"`
	ExitCode int             `yaml:"exit_code"`
	Total    SummaryStats    `yaml:"total"`
	Modules  []ModuleSummary `yaml:"modules"`
}

// ModuleSummary summarizes one module.
type ModuleSummary struct {
	Path  string        `yaml:"path"`
	Stats SummaryStats  `yaml:"stats"`
	Files []FileSummary `yaml:"files"`
}

// FileSummary summarizes one source file.
type FileSummary struct {
	Path  string       `yaml:"path"`
	Stats SummaryStats `yaml:"stats"`
}

// SummaryStats are line counts and the executed ratio.
type SummaryStats struct {
	Lines       int     `yaml:"lines"`
	Executed    int     `yaml:"executed"`
	Selected    int     `yaml:"selected"`
	SelectedHit int     `yaml:"selected_hit"`
	Rate        float64 `yaml:"rate"`
}

func summaryStats(stats m.CoverageStats) SummaryStats {
	return SummaryStats{
		Lines:       stats.Lines,
		Executed:    stats.Executed,
		Selected:    stats.Selected,
		SelectedHit: stats.SelectedAndHit,
		Rate:        stats.Rate(),
	}
}

// NewSummary builds the summary document of data.
func NewSummary(data *m.CoverageData) Summary {
	summary := Summary{
		Name:     data.Name,
		Outcome:  data.Outcome.String(),
		ExitCode: data.ExitCode,
		Total:    summaryStats(data.Stats()),
	}

	for _, module := range data.Modules {
		ms := ModuleSummary{Path: string(module.Path), Stats: summaryStats(module.Stats())}
		for _, file := range module.Files {
			ms.Files = append(ms.Files, FileSummary{Path: string(file.Path), Stats: summaryStats(file.Stats())})
		}

		summary.Modules = append(summary.Modules, ms)
	}

	return summary
}

func (e *summaryExporter) Export(ctx context.Context, data *m.CoverageData, output m.Path) error {
	content, err := yaml.Marshal(NewSummary(data))
	if err != nil {
		slog.Error("Failed to encode summary", "error", err)
		return fmt.Errorf("encode summary: %w", err)
	}

	if err := e.WriteFile(ctx, output, content, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", output, err)
	}

	return nil
}

func (e *summaryExporter) DefaultOutputPath(prefix string) m.Path {
	return m.Path(prefix + "-summary.yaml")
}
