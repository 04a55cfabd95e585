package domain

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	m "linecov.dev/pkg/linecov/internal/model"
)

// Merger combines coverage results.
type Merger interface {
	// Merge combines inputs into a new result. Invalid inputs are skipped
	// and reported through the returned error, which joins one
	// MergeConflictError per skipped input; the result is never nil.
	Merge(inputs []*m.CoverageData) (*m.CoverageData, error)
	// MergeFileCoverage returns a view of data in which each source file
	// appears once, under the first module that references it.
	MergeFileCoverage(data *m.CoverageData) *m.CoverageData
}

type merger struct{}

// NewMerger returns the default Merger.
func NewMerger() Merger {
	return &merger{}
}

type lineState struct {
	executed     bool
	instrumented bool
	selected     bool
}

type fileAccumulator map[int]lineState

type moduleAccumulator struct {
	header m.ModuleCoverage
	files  map[m.Path]fileAccumulator
}

func (mg *merger) Merge(inputs []*m.CoverageData) (*m.CoverageData, error) {
	var (
		conflicts []error
		name      string
		exitCode  int
		outcome   = m.OutcomeNotRun
		modules   = make(map[m.Path]*moduleAccumulator)
	)

	for i, input := range inputs {
		if err := ValidateCoverage(input); err != nil {
			label := fmt.Sprintf("input %d", i+1)
			if input != nil && input.Name != "" {
				label = fmt.Sprintf("%s (%s)", label, input.Name)
			}

			slog.Warn("Skipping invalid coverage input", "input", label, "error", err)
			conflicts = append(conflicts, &MergeConflictError{Input: label, Reason: err.Error()})

			continue
		}

		if name == "" {
			name = input.Name
		}

		if exitCode == 0 {
			exitCode = input.ExitCode
		}

		outcome = max(outcome, input.Outcome)

		for _, module := range input.Modules {
			accumulateModule(modules, module)
		}
	}

	merged := &m.CoverageData{Name: name, ExitCode: exitCode, Outcome: outcome}

	paths := make([]m.Path, 0, len(modules))
	for path := range modules {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	for _, path := range paths {
		merged.Modules = append(merged.Modules, modules[path].build())
	}

	return merged, errors.Join(conflicts...)
}

func accumulateModule(modules map[m.Path]*moduleAccumulator, module *m.ModuleCoverage) {
	acc, ok := modules[module.Path]
	if !ok {
		acc = &moduleAccumulator{
			header: m.ModuleCoverage{
				Path:        module.Path,
				BaseAddress: module.BaseAddress,
				Size:        module.Size,
				ProcessID:   module.ProcessID,
			},
			files: make(map[m.Path]fileAccumulator),
		}
		modules[module.Path] = acc
	} else if compareModuleHeaders(module, &acc.header) < 0 {
		acc.header.BaseAddress = module.BaseAddress
		acc.header.Size = module.Size
		acc.header.ProcessID = module.ProcessID
	}

	for _, file := range module.Files {
		lines, ok := acc.files[file.Path]
		if !ok {
			lines = make(fileAccumulator, len(file.Lines))
			acc.files[file.Path] = lines
		}

		lines.add(file.Lines)
	}
}

// compareModuleHeaders orders load records so the merged header does not
// depend on input order.
func compareModuleHeaders(a, b *m.ModuleCoverage) int {
	return cmp.Or(
		cmp.Compare(a.ProcessID, b.ProcessID),
		cmp.Compare(a.BaseAddress, b.BaseAddress),
		cmp.Compare(a.Size, b.Size),
	)
}

func (acc fileAccumulator) add(lines []m.LineCoverage) {
	for _, line := range lines {
		state := acc[line.Number]
		state.executed = state.executed || line.Executed
		state.instrumented = state.instrumented || line.Instrumented
		state.selected = state.selected || line.Selected
		acc[line.Number] = state
	}
}

func (acc fileAccumulator) build(path m.Path) *m.FileCoverage {
	file := &m.FileCoverage{Path: path, Lines: make([]m.LineCoverage, 0, len(acc))}

	for number, state := range acc {
		file.Lines = append(file.Lines, m.LineCoverage{
			Number:       number,
			Executed:     state.executed,
			Instrumented: state.instrumented,
			Selected:     state.selected,
		})
	}

	slices.SortFunc(file.Lines, func(a, b m.LineCoverage) int { return cmp.Compare(a.Number, b.Number) })

	return file
}

func (acc *moduleAccumulator) build() *m.ModuleCoverage {
	module := acc.header

	paths := make([]m.Path, 0, len(acc.files))
	for path := range acc.files {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	for _, path := range paths {
		module.Files = append(module.Files, acc.files[path].build(path))
	}

	return &module
}

// ValidateCoverage reports why data cannot take part in a merge.
func ValidateCoverage(data *m.CoverageData) error {
	if data == nil {
		return errors.New("missing coverage data")
	}

	for i, module := range data.Modules {
		if module == nil {
			return fmt.Errorf("module %d is empty", i)
		}

		if module.Path == "" {
			return fmt.Errorf("module %d has no path", i)
		}

		for j, file := range module.Files {
			if file == nil || file.Path == "" {
				return fmt.Errorf("file %d of module %s has no path", j, module.Path)
			}

			seen := make(map[int]struct{}, len(file.Lines))

			for _, line := range file.Lines {
				if line.Number <= 0 {
					return fmt.Errorf("line %d of %s is not positive", line.Number, file.Path)
				}

				if _, dup := seen[line.Number]; dup {
					return fmt.Errorf("line %d of %s is duplicated", line.Number, file.Path)
				}

				seen[line.Number] = struct{}{}
			}
		}
	}

	return nil
}

func (mg *merger) MergeFileCoverage(data *m.CoverageData) *m.CoverageData {
	view := &m.CoverageData{Name: data.Name, ExitCode: data.ExitCode, Outcome: data.Outcome}

	modules := slices.Clone(data.Modules)
	modules = slices.DeleteFunc(modules, func(module *m.ModuleCoverage) bool { return module == nil })
	slices.SortStableFunc(modules, func(a, b *m.ModuleCoverage) int { return cmp.Compare(a.Path, b.Path) })

	owners := make(map[m.Path]*moduleAccumulator)
	order := make([]*moduleAccumulator, 0, len(modules))
	byModule := make(map[m.Path]*moduleAccumulator)

	for _, module := range modules {
		acc, ok := byModule[module.Path]
		if !ok {
			acc = &moduleAccumulator{
				header: m.ModuleCoverage{
					Path:        module.Path,
					BaseAddress: module.BaseAddress,
					Size:        module.Size,
					ProcessID:   module.ProcessID,
				},
				files: make(map[m.Path]fileAccumulator),
			}
			byModule[module.Path] = acc
			order = append(order, acc)
		}

		for _, file := range module.Files {
			if file == nil {
				continue
			}

			owner, ok := owners[file.Path]
			if !ok {
				owner = acc
				owners[file.Path] = acc
				acc.files[file.Path] = make(fileAccumulator, len(file.Lines))
			}

			owner.files[file.Path].add(file.Lines)
		}
	}

	for _, acc := range order {
		view.Modules = append(view.Modules, acc.build())
	}

	return view
}
