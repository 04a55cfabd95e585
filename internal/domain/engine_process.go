package domain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

type run struct {
	engine    *engine
	args      EngineArgs
	debugger  adapter.DebuggerAdapter
	data      *m.CoverageData
	processes map[int]*processState
	// warned holds modules already reported as optimized.
	warned map[m.Path]struct{}

	rootPID      int
	rootSignaled bool
	crashed      bool
}

type processState struct {
	pid     int
	modules []*moduleState
}

// moduleState tracks the traps still installed in one loaded module.
type moduleState struct {
	info     adapter.ModuleInfo
	coverage *m.ModuleCoverage
	// remaining holds installed points that have not fired.
	remaining map[uint64]Point
	// addresses lists the remaining addresses of each line.
	addresses map[LineRef][]uint64
	lines     map[LineRef]*m.LineCoverage
}

func newProcessState(pid int) *processState {
	return &processState{pid: pid}
}

func (p *processState) moduleAt(address uint64) *moduleState {
	for _, module := range p.modules {
		if address >= module.info.Base && address-module.info.Base < module.info.Size {
			return module
		}
	}

	return nil
}

// fork copies the instrumentation state of p into a child process that
// inherited its memory.
func (p *processState) fork(pid int, data *m.CoverageData) *processState {
	child := newProcessState(pid)

	for _, module := range p.modules {
		coverage := data.AddModule(module.coverage.Path, module.info.Base, module.info.Size, pid)
		for _, file := range module.coverage.Files {
			copied := coverage.AddFile(file.Path)
			copied.Lines = slices.Clone(file.Lines)
		}

		state := &moduleState{
			info:      module.info,
			coverage:  coverage,
			remaining: make(map[uint64]Point, len(module.remaining)),
			addresses: make(map[LineRef][]uint64, len(module.addresses)),
		}

		for address, point := range module.remaining {
			state.remaining[address] = point
		}

		for ref, addresses := range module.addresses {
			state.addresses[ref] = slices.Clone(addresses)
		}

		state.indexLines()
		child.modules = append(child.modules, state)
	}

	return child
}

func (s *moduleState) indexLines() {
	s.lines = make(map[LineRef]*m.LineCoverage)

	for _, file := range s.coverage.Files {
		for i := range file.Lines {
			s.lines[LineRef{File: file.Path, Line: file.Lines[i].Number}] = &file.Lines[i]
		}
	}
}

func (r *run) onModuleLoad(ctx context.Context, event adapter.DebugEvent) {
	proc, ok := r.processes[event.PID]
	if !ok {
		return
	}

	info := event.Module

	if !r.args.Filter.IsModuleSelected(info.Path) {
		slog.Debug("Module not selected", "module", info.Path)
		return
	}

	symbols, err := r.args.Resolver.Resolve(ctx, info.Path, info.Base, r.args.OptimizedBuild)
	if err != nil {
		r.args.Warnings.AddError(err)
		return
	}

	if symbols.Optimized && !r.args.OptimizedBuild {
		if _, done := r.warned[info.Path]; !done {
			r.warned[info.Path] = struct{}{}
			r.args.Warnings.Add("Module %s seems to be built with optimizations, consider --optimized_build", info.Path)
		}
	}

	symbols = symbols.Filter(func(ref LineRef) bool {
		return keepLine(ctx, r.args.Filter, r.args.Excluder, r.args.Diff, ref)
	})
	if len(symbols.Points) == 0 {
		slog.Debug("Module has no selected lines", "module", info.Path)
		return
	}

	state := r.buildModule(proc.pid, info, symbols)
	r.install(proc.pid, state, symbols)
	proc.modules = append(proc.modules, state)

	slog.Info("Instrumented module", "module", info.Path, "pid", proc.pid, "points", len(state.remaining))
}

// keepLine reports whether a line should be instrumented at all. In
// exclude mode lines outside the diffs are dropped here; in track mode
// they stay and are only marked unselected.
func keepLine(ctx context.Context, filter ScopeFilter, excluder LineExcluder, diff DiffSelector, ref LineRef) bool {
	if !filter.IsSourceSelected(ref.File) {
		return false
	}

	if excluder != nil && excluder.IsExcluded(ctx, ref.File, ref.Line) {
		return false
	}

	if diff != nil && diff.Enabled() && diff.Mode() == m.DiffModeExclude {
		return diff.IsSelected(ref.File, ref.Line)
	}

	return true
}

func isSelected(diff DiffSelector, ref LineRef) bool {
	if diff == nil || !diff.Enabled() {
		return true
	}

	return diff.IsSelected(ref.File, ref.Line)
}

func (r *run) buildModule(pid int, info adapter.ModuleInfo, symbols *ModuleSymbols) *moduleState {
	coverage := r.data.AddModule(info.Path, info.Base, info.Size, pid)
	addLines(coverage, symbols, r.args.Diff)

	state := &moduleState{
		info:      info,
		coverage:  coverage,
		remaining: make(map[uint64]Point, len(symbols.Points)),
		addresses: make(map[LineRef][]uint64),
	}
	state.indexLines()

	return state
}

// addLines adds one not-yet-executed line per distinct line of symbols.
func addLines(coverage *m.ModuleCoverage, symbols *ModuleSymbols, diff DiffSelector) {
	byFile := make(map[m.Path]map[int]struct{})

	for _, point := range symbols.Points {
		for _, ref := range point.Lines {
			if byFile[ref.File] == nil {
				byFile[ref.File] = make(map[int]struct{})
			}

			byFile[ref.File][ref.Line] = struct{}{}
		}
	}

	for _, path := range symbols.Files() {
		file := coverage.AddFile(path)

		numbers := make([]int, 0, len(byFile[path]))
		for number := range byFile[path] {
			numbers = append(numbers, number)
		}

		slices.Sort(numbers)

		for _, number := range numbers {
			file.Lines = append(file.Lines, m.LineCoverage{
				Number:   number,
				Selected: isSelected(diff, LineRef{File: path, Line: number}),
			})
		}
	}
}

func (r *run) install(pid int, state *moduleState, symbols *ModuleSymbols) {
	var (
		failures int
		first    error
	)

	for _, point := range symbols.Points {
		if err := r.debugger.InstallPoint(pid, point.Address); err != nil {
			failures++
			if first == nil {
				first = &InstallError{Module: state.info.Path, Address: point.Address, Err: err}
			}

			continue
		}

		state.remaining[point.Address] = point

		for _, ref := range point.Lines {
			state.addresses[ref] = append(state.addresses[ref], point.Address)
			state.lines[ref].Instrumented = true
		}
	}

	if failures > 0 {
		slog.Debug("Instrumentation points skipped", "module", state.info.Path, "count", failures)
		r.args.Warnings.Add("%d instrumentation points skipped in %s, first: %v", failures, state.info.Path, first)
	}
}

func (r *run) onModuleUnload(event adapter.DebugEvent) {
	proc, ok := r.processes[event.PID]
	if !ok {
		return
	}

	proc.modules = slices.DeleteFunc(proc.modules, func(module *moduleState) bool {
		return module.info.Path == event.Module.Path && module.info.Base == event.Module.Base
	})
}

func (r *run) onBreakpoint(event adapter.DebugEvent) {
	proc, ok := r.processes[event.PID]
	if !ok {
		return
	}

	module := proc.moduleAt(event.Address)
	if module == nil {
		slog.Debug("Breakpoint outside instrumented modules", "pid", event.PID, "address", fmt.Sprintf("%#x", event.Address))
		return
	}

	point, ok := module.remaining[event.Address]
	if !ok {
		return
	}

	module.retire(event.Address)

	var siblings []uint64

	for _, ref := range point.Lines {
		module.lines[ref].Executed = true
		siblings = append(siblings, module.addresses[ref]...)
	}

	slices.Sort(siblings)

	for _, address := range slices.Compact(siblings) {
		if !module.allExecuted(address) {
			continue
		}

		module.retire(address)

		if err := r.debugger.RemovePoint(proc.pid, address); err != nil {
			slog.Debug("Failed to remove point", "pid", proc.pid, "address", fmt.Sprintf("%#x", address), "error", err)
		}
	}
}

func (s *moduleState) allExecuted(address uint64) bool {
	point, ok := s.remaining[address]
	if !ok {
		return false
	}

	for _, ref := range point.Lines {
		if !s.lines[ref].Executed {
			return false
		}
	}

	return true
}

// retire forgets a point that is no longer installed.
func (s *moduleState) retire(address uint64) {
	point, ok := s.remaining[address]
	if !ok {
		return
	}

	delete(s.remaining, address)

	for _, ref := range point.Lines {
		s.addresses[ref] = slices.DeleteFunc(s.addresses[ref], func(a uint64) bool { return a == address })
	}
}
