package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"syscall"

	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

// DefaultMaxUnmatchedPaths caps the paths listed in aggregated warnings.
const DefaultMaxUnmatchedPaths = 30

// EngineArgs configures one instrumented run.
type EngineArgs struct {
	Start    m.StartInfo
	Name     string
	Resolver Resolver
	Filter   ScopeFilter
	Diff     DiffSelector
	Excluder LineExcluder
	Warnings *Warnings

	CoverChildren          bool
	ContinueAfterException bool
	OptimizedBuild         bool
	// MaxUnmatchedPaths caps aggregated warnings, UnboundedWarningPaths
	// lists everything.
	MaxUnmatchedPaths int
}

// Engine runs a target under the debugger and records executed lines.
type Engine interface {
	// Run drives the target until every traced process has exited. Only a
	// launch or attach failure is returned as an error; crashes, timeouts
	// and cancellation are reported through the outcome of the result.
	Run(ctx context.Context, args EngineArgs) (*m.CoverageData, error)
	// State returns the current run state.
	State() m.RunState
}

// DebuggerFactory creates the debugger used by one run.
type DebuggerFactory func() adapter.DebuggerAdapter

type engine struct {
	newDebugger DebuggerFactory
	state       atomic.Int32
}

// NewEngine returns an Engine that creates a fresh debugger for every run.
func NewEngine(newDebugger DebuggerFactory) Engine {
	return &engine{newDebugger: newDebugger}
}

func (e *engine) State() m.RunState {
	return m.RunState(e.state.Load())
}

func (e *engine) setState(state m.RunState) {
	if previous := m.RunState(e.state.Swap(int32(state))); previous != state {
		slog.Debug("Engine state changed", "from", previous, "to", state)
	}
}

type killReason int32

const (
	notKilled killReason = iota
	killedByCancel
	killedByTimeout
)

func (e *engine) Run(ctx context.Context, args EngineArgs) (*m.CoverageData, error) {
	if args.Warnings == nil {
		args.Warnings = NewWarnings()
	}

	debugger := e.newDebugger()

	defer func() {
		if err := debugger.Close(); err != nil {
			slog.Debug("Failed to close debugger", "error", err)
		}
	}()

	r := &run{
		engine:    e,
		args:      args,
		debugger:  debugger,
		data:      m.NewCoverageData(args.Name),
		processes: make(map[int]*processState),
		warned:    make(map[m.Path]struct{}),
	}

	e.setState(m.StateLaunching)

	if err := r.start(ctx); err != nil {
		e.setState(m.StateTerminated)
		return nil, err
	}

	e.setState(m.StateRunning)

	var reason atomic.Int32

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				reason.Store(int32(killedByTimeout))
			} else {
				reason.Store(int32(killedByCancel))
			}

			slog.Info("Stopping target", "reason", ctx.Err())

			if err := debugger.Kill(); err != nil {
				slog.Error("Failed to kill target", "error", err)
			}
		case <-stop:
		}
	}()

	if err := r.loop(ctx); err != nil {
		slog.Error("Debug event loop failed", "error", err)
		args.Warnings.Add("Debugging stopped early: %v", err)

		if killErr := debugger.Kill(); killErr != nil {
			slog.Debug("Failed to kill target after loop failure", "error", killErr)
		}
	}

	e.setState(m.StateTerminated)
	r.finish(killReason(reason.Load()))

	return r.data, nil
}

func (r *run) start(ctx context.Context) error {
	start := r.args.Start

	if start.IsAttach() {
		if err := r.debugger.Attach(ctx, start.AttachPID); err != nil {
			slog.Error("Failed to attach", "pid", start.AttachPID, "error", err)
			return fmt.Errorf("%w: attach to %d: %w", ErrLaunch, start.AttachPID, err)
		}

		r.rootPID = start.AttachPID

		return nil
	}

	pid, err := r.debugger.Launch(ctx, start)
	if err != nil {
		slog.Error("Failed to launch", "path", start.Path, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrLaunch, start.Path, err)
	}

	r.rootPID = pid

	return nil
}

func (r *run) loop(ctx context.Context) error {
	for {
		event, err := r.debugger.WaitNextEvent(ctx)
		if errors.Is(err, adapter.ErrNoMoreEvents) {
			return nil
		}

		if err != nil {
			return err
		}

		signal := r.handle(ctx, event)

		if event.Stopped && !r.crashed {
			if err := r.debugger.Resume(event.TID, signal); err != nil {
				slog.Debug("Failed to resume thread", "tid", event.TID, "error", err)
			}
		}
	}
}

// handle applies one event and returns the signal to deliver on resume.
func (r *run) handle(ctx context.Context, event adapter.DebugEvent) int {
	slog.Debug("Debug event", "kind", event.Kind, "pid", event.PID, "tid", event.TID)

	switch event.Kind {
	case adapter.EventProcessCreate:
		r.onProcessCreate(event)
	case adapter.EventProcessExit:
		r.onProcessExit(event)
	case adapter.EventModuleLoad:
		r.onModuleLoad(ctx, event)
	case adapter.EventModuleUnload:
		r.onModuleUnload(event)
	case adapter.EventBreakpoint:
		r.onBreakpoint(event)
	case adapter.EventException:
		return r.onException(event)
	case adapter.EventSignal:
		return event.Signal
	case adapter.EventThreadCreate, adapter.EventThreadExit, adapter.EventLoaderBreak, adapter.EventExec:
	}

	return 0
}

func (r *run) onProcessCreate(event adapter.DebugEvent) {
	if event.ParentPID == 0 {
		r.processes[event.PID] = newProcessState(event.PID)
		return
	}

	parent, ok := r.processes[event.ParentPID]
	if !ok || !r.args.CoverChildren {
		if !ok {
			slog.Debug("Releasing child of unknown process", "pid", event.PID, "parent", event.ParentPID)
		}

		if err := r.debugger.ReleaseProcess(event.PID); err != nil {
			slog.Debug("Failed to release child process", "pid", event.PID, "error", err)
		}

		return
	}

	if err := r.debugger.FollowProcess(event.PID); err != nil {
		r.args.Warnings.Add("Cannot follow child process %d: %v", event.PID, err)
		return
	}

	r.processes[event.PID] = parent.fork(event.PID, r.data)
	r.engine.setState(m.StateChildSpawned)

	slog.Info("Following child process", "pid", event.PID, "parent", event.ParentPID)
}

func (r *run) onProcessExit(event adapter.DebugEvent) {
	delete(r.processes, event.PID)

	if event.PID == r.rootPID {
		if !r.crashed {
			r.data.ExitCode = event.ExitCode

			if event.Signal != 0 {
				r.rootSignaled = true
			}
		}

		slog.Info("Target exited", "pid", event.PID, "exitCode", event.ExitCode)
	} else {
		slog.Debug("Child process exited", "pid", event.PID, "exitCode", event.ExitCode)
	}

	if len(r.processes) == 1 {
		r.engine.setState(m.StateRunning)
	}
}

func (r *run) onException(event adapter.DebugEvent) int {
	name := syscall.Signal(event.Signal).String()

	if event.Handled {
		slog.Debug("Exception delivered to its handler", "pid", event.PID, "signal", name, "address", fmt.Sprintf("%#x", event.Address))
		return event.Signal
	}

	if r.args.ContinueAfterException {
		slog.Info("Exception delivered to target", "pid", event.PID, "signal", name, "address", fmt.Sprintf("%#x", event.Address))
		return event.Signal
	}

	r.crashed = true
	r.data.ExitCode = 128 + event.Signal
	r.args.Warnings.Add("Process %d crashed with %s at %#x", event.PID, name, event.Address)

	if err := r.debugger.Kill(); err != nil {
		slog.Error("Failed to kill crashed target", "error", err)
	}

	return 0
}

func (r *run) finish(reason killReason) {
	switch {
	case r.crashed:
		r.data.Outcome = m.OutcomeCrashed
	case reason == killedByTimeout:
		r.data.Outcome = m.OutcomeTimedOut
	case reason == killedByCancel:
		r.data.Outcome = m.OutcomeCancelled
	case r.rootSignaled:
		r.data.Outcome = m.OutcomeCrashed
	default:
		r.data.Outcome = m.OutcomeNormal
	}

	limit := r.args.MaxUnmatchedPaths

	if r.args.Filter != nil {
		r.args.Warnings.AddAggregated("Source patterns that matched no file:", r.args.Filter.UnmatchedSourcePatterns(), limit)
	}

	if r.args.Diff != nil && r.args.Diff.Enabled() {
		r.args.Warnings.AddAggregated("Files in the diff that match no executable line:", r.args.Diff.UnmatchedFiles(), limit)
	}

	slog.Info("Run finished", "outcome", r.data.Outcome, "exitCode", r.data.ExitCode, "modules", len(r.data.Modules))
}
