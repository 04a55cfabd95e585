package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"linecov.dev/pkg/linecov/internal/adapter"
	"linecov.dev/pkg/linecov/internal/controller"
	m "linecov.dev/pkg/linecov/internal/model"
	"linecov.dev/pkg/linecov/pkg"
)

// DefaultOutputPrefix names exports when no target executable gives a name.
const DefaultOutputPrefix = "CoverageOutput"

// RunArgs describes one coverage session: an optional target run plus the
// snapshots to merge with it.
type RunArgs struct {
	// Start is the target. A zero Path and AttachPID means no target runs
	// and only Inputs are merged.
	Start               m.StartInfo
	Filters             m.ScopeFilterSettings
	Diffs               []m.UnifiedDiffSettings
	DiffMode            m.DiffMode
	Substitutions       []m.SubstitutePath
	ExcludedLineRegexes []string
	Inputs              []m.Path
	Exports             []m.ExportSpec

	CoverChildren          bool
	ContinueAfterException bool
	OptimizedBuild         bool
	AggregateByFile        bool
	// Verbose lists every path in aggregated warnings.
	Verbose bool
	// Timeout kills the target after the given duration when positive.
	Timeout time.Duration
	// SpillDir holds staged input snapshots; empty means the system
	// temporary directory.
	SpillDir string
}

// HasTarget reports whether args name a program to launch or a process
// to attach to.
func (a RunArgs) HasTarget() bool {
	return a.Start.Path != "" || a.Start.IsAttach()
}

// ViewArgs describes a snapshot to display.
type ViewArgs struct {
	Path            m.Path
	AggregateByFile bool
}

// Workflow drives coverage sessions from configuration to exported results.
type Workflow interface {
	// Run returns the exit code of the target when one ran, 0 otherwise.
	Run(ctx context.Context, args RunArgs) (int, error)
	View(ctx context.Context, args ViewArgs) error
	// List shows the lines of the target executable that a run would
	// instrument, without running it.
	List(ctx context.Context, args RunArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.SnapshotStore
	adapter.SymbolAdapter
	controller.UI
	Merger

	engine    Engine
	exporters map[m.ExportKind]adapter.Exporter
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	snapshotStore adapter.SnapshotStore,
	symbolAdapter adapter.SymbolAdapter,
	exporters map[m.ExportKind]adapter.Exporter,
	engine Engine,
	merger Merger,
	ui controller.UI,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		SnapshotStore:   snapshotStore,
		SymbolAdapter:   symbolAdapter,
		UI:              ui,
		Merger:          merger,
		engine:          engine,
		exporters:       exporters,
	}
}

type runSettings struct {
	substitutor Substitutor
	filter      ScopeFilter
	diff        DiffSelector
	excluder    LineExcluder
}

// stagedSnapshot is an input snapshot waiting in the spill to be merged.
type stagedSnapshot struct {
	Index int
	Data  *m.CoverageData
}

type inputHeader struct {
	name     string
	exitCode int
	// slot is the spill record of a loaded input.
	slot   uint64
	loaded bool
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (int, error) {
	mode := controller.WithMergeMode()
	if args.HasTarget() {
		mode = controller.WithRunMode()
	}

	if err := w.Start(ctx, mode); err != nil {
		return 1, fmt.Errorf("start ui: %w", err)
	}

	// Results are still reported after the target was cancelled.
	reportCtx := context.WithoutCancel(ctx)
	warnings := NewWarnings()

	defer w.Close(reportCtx)
	defer func() { w.DisplayWarnings(reportCtx, warnings.Messages()) }()

	settings, err := w.configure(ctx, args)
	if err != nil {
		return 1, err
	}

	exports, err := w.resolveExports(args.Exports)
	if err != nil {
		return 1, err
	}

	spill, headers, err := w.loadInputs(ctx, args, warnings)
	if err != nil {
		return 1, err
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Debug("Failed to remove input spill", "path", spill.Path(), "error", err)
		}
	}()

	var runData *m.CoverageData

	if args.HasTarget() {
		runData, err = w.runTarget(ctx, args, settings, warnings)
		if err != nil {
			return 1, err
		}
	}

	merged, err := w.mergeAll(runData, spill, headers, warnings)
	if err != nil {
		return 1, err
	}

	if args.AggregateByFile {
		merged = w.MergeFileCoverage(merged)
	}

	if err := w.DisplayCoverage(reportCtx, merged); err != nil {
		slog.Warn("Failed to display coverage", "error", err)
	}

	exportErr := w.export(reportCtx, merged, exports, outputPrefix(args.Start))

	exitCode := 0
	if runData != nil {
		exitCode = targetExitCode(runData)
	}

	return exitCode, exportErr
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}

	defer w.Close(ctx)

	data, err := w.Load(ctx, args.Path)
	if err != nil {
		return fmt.Errorf("load %s: %w", args.Path, err)
	}

	if args.AggregateByFile {
		data = w.MergeFileCoverage(data)
	}

	if data.Outcome != m.OutcomeNotRun {
		w.DisplayRunResult(ctx, data)
	}

	return w.DisplayCoverage(ctx, data)
}

func (w *workflow) List(ctx context.Context, args RunArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}

	warnings := NewWarnings()

	defer w.Close(ctx)
	defer func() { w.DisplayWarnings(ctx, warnings.Messages()) }()

	settings, err := w.configure(ctx, args)
	if err != nil {
		return err
	}

	program, err := w.LookPath(ctx, string(args.Start.Path))
	if err != nil {
		slog.Error("Cannot find executable", "path", args.Start.Path, "error", err)
		return fmt.Errorf("find %s: %w", args.Start.Path, err)
	}

	data := m.NewCoverageData(filepath.Base(string(program)))

	if !settings.filter.IsModuleSelected(program) {
		warnings.Add("Module %s is not selected by the module filters", program)
		return w.DisplayCoverage(ctx, data)
	}

	symbols, err := NewResolver(w.SymbolAdapter, settings.substitutor).Resolve(ctx, program, 0, args.OptimizedBuild)
	if err != nil {
		return err
	}

	symbols = symbols.Filter(func(ref LineRef) bool {
		return keepLine(ctx, settings.filter, settings.excluder, settings.diff, ref)
	})

	addLines(data.AddModule(program, 0, 0, 0), symbols, settings.diff)

	maxPaths := DefaultMaxUnmatchedPaths
	if args.Verbose {
		maxPaths = UnboundedWarningPaths
	}

	warnings.AddAggregated("Source patterns that matched no file:", settings.filter.UnmatchedSourcePatterns(), maxPaths)

	return w.DisplayCoverage(ctx, data)
}

func (w *workflow) configure(ctx context.Context, args RunArgs) (runSettings, error) {
	var (
		settings runSettings
		err      error
	)

	if settings.substitutor, err = NewSubstitutor(args.Substitutions); err != nil {
		slog.Error("Invalid source path substitution", "error", err)
		return settings, err
	}

	if settings.filter, err = NewScopeFilter(args.Filters); err != nil {
		slog.Error("Invalid scope filter", "error", err)
		return settings, err
	}

	settings.diff, err = NewDiffSelector(ctx, w.SourceFSAdapter, args.Diffs, settings.substitutor, args.DiffMode)
	if err != nil {
		slog.Error("Invalid unified diff", "error", err)
		return settings, err
	}

	if settings.excluder, err = NewLineExcluder(w.SourceFSAdapter, args.ExcludedLineRegexes); err != nil {
		slog.Error("Invalid excluded line regex", "error", err)
		return settings, err
	}

	return settings, nil
}

func (w *workflow) resolveExports(specs []m.ExportSpec) ([]m.ExportSpec, error) {
	if len(specs) == 0 {
		specs = []m.ExportSpec{{Kind: m.ExportBinary}}
	}

	for _, spec := range specs {
		if _, ok := w.exporters[spec.Kind]; !ok {
			slog.Error("Unknown export type", "kind", spec.Kind)
			return nil, configurationError("export_type", fmt.Errorf("unknown export type %q", spec.Kind))
		}
	}

	return specs, nil
}

// loadInputs decodes the input snapshots concurrently and stages the valid
// ones in a spill. The spill fills in completion order; the returned
// headers are in input order and point at each staged record. Unusable
// inputs become merge conflict warnings.
func (w *workflow) loadInputs(ctx context.Context, args RunArgs, warnings *Warnings) (pkg.FileSpill[stagedSnapshot], []inputHeader, error) {
	spill, err := pkg.NewFileSpill[stagedSnapshot](args.SpillDir)
	if err != nil {
		return nil, nil, fmt.Errorf("create input spill: %w", err)
	}

	headers := make([]inputHeader, len(args.Inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	for i, input := range args.Inputs {
		group.Go(func() error {
			data, err := w.Load(groupCtx, input)
			if err == nil {
				err = ValidateCoverage(data)
			}

			if err != nil {
				slog.Warn("Skipping input coverage", "path", input, "error", err)
				warnings.AddError(&MergeConflictError{Input: string(input), Reason: err.Error()})

				return nil
			}

			slot, err := spill.Append(stagedSnapshot{Index: i, Data: data})
			if err != nil {
				return err
			}

			headers[i] = inputHeader{name: data.Name, exitCode: data.ExitCode, slot: slot, loaded: true}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if removeErr := spill.Remove(); removeErr != nil {
			slog.Debug("Failed to remove input spill", "path", spill.Path(), "error", removeErr)
		}

		return nil, nil, fmt.Errorf("stage input coverage: %w", err)
	}

	if err := spill.Close(); err != nil {
		return nil, nil, fmt.Errorf("close input spill: %w", err)
	}

	slog.Info("Input coverage staged", "inputs", len(args.Inputs), "loaded", spill.Len())

	return spill, headers, nil
}

func (w *workflow) runTarget(ctx context.Context, args RunArgs, settings runSettings, warnings *Warnings) (*m.CoverageData, error) {
	start := args.Start
	name := fmt.Sprintf("pid %d", start.AttachPID)

	if !start.IsAttach() {
		program, err := w.LookPath(ctx, string(start.Path))
		if err != nil {
			slog.Error("Cannot find target", "path", start.Path, "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrLaunch, start.Path, err)
		}

		start.Path = program
		name = filepath.Base(string(program))
	}

	if args.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}

	maxPaths := DefaultMaxUnmatchedPaths
	if args.Verbose {
		maxPaths = UnboundedWarningPaths
	}

	w.DisplayTarget(ctx, start)

	data, err := w.engine.Run(ctx, EngineArgs{
		Start:                  start,
		Name:                   name,
		Resolver:               NewResolver(w.SymbolAdapter, settings.substitutor),
		Filter:                 settings.filter,
		Diff:                   settings.diff,
		Excluder:               settings.excluder,
		Warnings:               warnings,
		CoverChildren:          args.CoverChildren,
		ContinueAfterException: args.ContinueAfterException,
		OptimizedBuild:         args.OptimizedBuild,
		MaxUnmatchedPaths:      maxPaths,
	})
	if err != nil {
		return nil, err
	}

	w.DisplayRunResult(context.WithoutCancel(ctx), data)

	if data.ExitCode != 0 {
		slog.Error("Target exited with a non-zero code", "name", name, "exitCode", data.ExitCode, "outcome", data.Outcome)
	}

	return data, nil
}

// mergeAll folds the staged inputs into the run result in input order. The
// name and exit code follow the same order, the run first.
func (w *workflow) mergeAll(
	runData *m.CoverageData,
	spill pkg.FileSpill[stagedSnapshot],
	headers []inputHeader,
	warnings *Warnings,
) (*m.CoverageData, error) {
	merged := runData
	if merged == nil {
		merged = m.NewCoverageData("")
	}

	for _, header := range headers {
		if !header.loaded {
			continue
		}

		staged, err := spill.Get(header.slot)
		if err != nil {
			return nil, fmt.Errorf("read input spill: %w", err)
		}

		slog.Debug("Merging input coverage", "input", staged.Index+1, "name", staged.Data.Name)

		next, err := w.Merge([]*m.CoverageData{merged, staged.Data})
		if err != nil {
			warnings.AddError(err)
		}

		merged = next
	}

	if spill.Len() == 0 {
		normalized, err := w.Merge([]*m.CoverageData{merged})
		if err != nil {
			warnings.AddError(err)
		}

		merged = normalized
	}

	ordered := make([]inputHeader, 0, len(headers)+1)
	if runData != nil {
		ordered = append(ordered, inputHeader{name: runData.Name, exitCode: runData.ExitCode})
	}

	ordered = append(ordered, headers...)

	merged.Name, merged.ExitCode = "", 0

	for _, header := range ordered {
		if merged.Name == "" {
			merged.Name = header.name
		}

		if merged.ExitCode == 0 {
			merged.ExitCode = header.exitCode
		}
	}

	return merged, nil
}

func (w *workflow) export(ctx context.Context, data *m.CoverageData, specs []m.ExportSpec, prefix string) error {
	var errs []error

	for _, spec := range specs {
		exporter := w.exporters[spec.Kind]

		output := spec.Output
		if output == "" {
			output = exporter.DefaultOutputPath(prefix)
		}

		if err := exporter.Export(ctx, data, output); err != nil {
			slog.Error("Export failed", "kind", spec.Kind, "output", output, "error", err)
			errs = append(errs, fmt.Errorf("export %s to %s: %w", spec.Kind, output, err))

			continue
		}

		w.DisplayExport(ctx, spec.Kind, output)
	}

	return errors.Join(errs...)
}

func outputPrefix(start m.StartInfo) string {
	if start.Path == "" {
		return DefaultOutputPrefix
	}

	base := filepath.Base(string(start.Path))

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// targetExitCode maps runs that did not finish on their own to a failure.
func targetExitCode(data *m.CoverageData) int {
	if data.ExitCode == 0 && (data.Outcome == m.OutcomeTimedOut || data.Outcome == m.OutcomeCancelled) {
		return 1
	}

	return data.ExitCode
}
