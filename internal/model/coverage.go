// Package model defines the coverage data structures shared by the engine,
// the merger and the exporters.
package model

// CoverageData is the result of one run, or of merging several runs.
type CoverageData struct {
	Name     string
	ExitCode int
	Outcome  RunOutcome
	Modules  []*ModuleCoverage
}

// ModuleCoverage holds the files discovered in one loaded binary image.
type ModuleCoverage struct {
	Path        Path
	BaseAddress uint64
	Size        uint64
	ProcessID   int
	Files       []*FileCoverage
}

// FileCoverage holds the executable lines of one source file, sorted by
// line number.
type FileCoverage struct {
	Path  Path
	Lines []LineCoverage
}

// LineCoverage is the coverage state of one executable line.
type LineCoverage struct {
	Number int
	// Executed only ever goes from false to true.
	Executed bool
	// Instrumented is false when no trap could be installed for the line.
	Instrumented bool
	// Selected is false for lines outside the configured diffs.
	Selected bool
}

// NewCoverageData returns an empty run result.
func NewCoverageData(name string) *CoverageData {
	return &CoverageData{Name: name, Outcome: OutcomeNotRun}
}

// AddModule appends a module and returns it.
func (c *CoverageData) AddModule(path Path, base, size uint64, pid int) *ModuleCoverage {
	module := &ModuleCoverage{Path: path, BaseAddress: base, Size: size, ProcessID: pid}
	c.Modules = append(c.Modules, module)

	return module
}

// FindModule returns the first module with the given path.
func (c *CoverageData) FindModule(path Path) *ModuleCoverage {
	for _, module := range c.Modules {
		if module.Path == path {
			return module
		}
	}

	return nil
}

// FindFile returns the file with the given path.
func (mc *ModuleCoverage) FindFile(path Path) *FileCoverage {
	for _, file := range mc.Files {
		if file.Path == path {
			return file
		}
	}

	return nil
}

// AddFile appends a file and returns it.
func (mc *ModuleCoverage) AddFile(path Path) *FileCoverage {
	file := &FileCoverage{Path: path}
	mc.Files = append(mc.Files, file)

	return file
}

// Line returns the line with the given number, or nil.
func (fc *FileCoverage) Line(number int) *LineCoverage {
	lo, hi := 0, len(fc.Lines)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if fc.Lines[mid].Number < number {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo < len(fc.Lines) && fc.Lines[lo].Number == number {
		return &fc.Lines[lo]
	}

	return nil
}

// Clone returns a deep copy of the data.
func (c *CoverageData) Clone() *CoverageData {
	if c == nil {
		return nil
	}

	out := &CoverageData{Name: c.Name, ExitCode: c.ExitCode, Outcome: c.Outcome}
	for _, module := range c.Modules {
		if module == nil {
			out.Modules = append(out.Modules, nil)
			continue
		}

		mc := &ModuleCoverage{
			Path:        module.Path,
			BaseAddress: module.BaseAddress,
			Size:        module.Size,
			ProcessID:   module.ProcessID,
		}

		for _, file := range module.Files {
			if file == nil {
				mc.Files = append(mc.Files, nil)
				continue
			}

			fc := &FileCoverage{Path: file.Path, Lines: make([]LineCoverage, len(file.Lines))}
			copy(fc.Lines, file.Lines)
			mc.Files = append(mc.Files, fc)
		}

		out.Modules = append(out.Modules, mc)
	}

	return out
}
