package domain

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"linecov.dev/pkg/linecov/internal/adapter"
	adaptermocks "linecov.dev/pkg/linecov/internal/adapter/mocks"
	m "linecov.dev/pkg/linecov/internal/model"
)

const (
	rootPID  = 100
	childPID = 200
	appBase  = 0x400000
)

var appModule = adapter.ModuleInfo{Path: "/bin/app", Base: appBase, Size: 0x10000}

type resumeCall struct {
	tid    int
	signal int
}

// scriptedDebugger replays a fixed list of events. When blockAtEnd is set
// it waits for Kill once the script is exhausted and then reports the root
// process as killed.
type scriptedDebugger struct {
	events     []adapter.DebugEvent
	blockAtEnd bool
	launchErr  error
	installErr map[uint64]error

	installed []uint64
	removed   []uint64
	resumed   []resumeCall
	followed  []int
	released  []int
	attached  int
	closed    bool

	killOnce sync.Once
	killed   chan struct{}
	reported bool
}

func newScriptedDebugger(events ...adapter.DebugEvent) *scriptedDebugger {
	return &scriptedDebugger{events: events, killed: make(chan struct{})}
}

func (d *scriptedDebugger) Launch(_ context.Context, _ m.StartInfo) (int, error) {
	if d.launchErr != nil {
		return 0, d.launchErr
	}

	return rootPID, nil
}

func (d *scriptedDebugger) Attach(_ context.Context, pid int) error {
	d.attached = pid
	return nil
}

func (d *scriptedDebugger) WaitNextEvent(_ context.Context) (adapter.DebugEvent, error) {
	if len(d.events) > 0 {
		event := d.events[0]
		d.events = d.events[1:]

		return event, nil
	}

	if d.blockAtEnd && !d.reported {
		<-d.killed
		d.reported = true

		return adapter.DebugEvent{Kind: adapter.EventProcessExit, PID: rootPID, TID: rootPID, Signal: int(syscall.SIGKILL)}, nil
	}

	return adapter.DebugEvent{}, adapter.ErrNoMoreEvents
}

func (d *scriptedDebugger) InstallPoint(_ int, address uint64) error {
	if err := d.installErr[address]; err != nil {
		return err
	}

	d.installed = append(d.installed, address)

	return nil
}

func (d *scriptedDebugger) RemovePoint(_ int, address uint64) error {
	d.removed = append(d.removed, address)
	return nil
}

func (d *scriptedDebugger) Resume(tid, signal int) error {
	d.resumed = append(d.resumed, resumeCall{tid: tid, signal: signal})
	return nil
}

func (d *scriptedDebugger) FollowProcess(pid int) error {
	d.followed = append(d.followed, pid)
	return nil
}

func (d *scriptedDebugger) ReleaseProcess(pid int) error {
	d.released = append(d.released, pid)
	return nil
}

func (d *scriptedDebugger) Kill() error {
	d.killOnce.Do(func() { close(d.killed) })
	return nil
}

func (d *scriptedDebugger) Close() error {
	d.closed = true
	return nil
}

func (d *scriptedDebugger) wasKilled() bool {
	select {
	case <-d.killed:
		return true
	default:
		return false
	}
}

type staticResolver struct {
	symbols map[m.Path]*ModuleSymbols
}

func (r staticResolver) Resolve(_ context.Context, path m.Path, _ uint64, _ bool) (*ModuleSymbols, error) {
	symbols, ok := r.symbols[path]
	if !ok {
		return nil, &SymbolLoadError{Module: path, Err: adapter.ErrNoDebugInfo}
	}

	return symbols, nil
}

// lineAddress is the address of the single point of line n of main.c.
func lineAddress(n int) uint64 {
	return appBase + 0x1000 + uint64(n)*0x10
}

// appSymbols has one point per line 1 to 8 of main.c, plus a second
// point for line 3.
func appSymbols() *ModuleSymbols {
	symbols := &ModuleSymbols{Path: appModule.Path, Base: appBase}
	for n := 1; n <= 8; n++ {
		symbols.Points = append(symbols.Points, Point{
			Address: lineAddress(n),
			Lines:   []LineRef{{File: "/src/main.c", Line: n}},
		})
	}

	symbols.Points = append(symbols.Points, Point{
		Address: lineAddress(20),
		Lines:   []LineRef{{File: "/src/main.c", Line: 3}},
	})

	return symbols
}

func processCreate(pid, parent int) adapter.DebugEvent {
	return adapter.DebugEvent{Kind: adapter.EventProcessCreate, PID: pid, TID: pid, ParentPID: parent, Stopped: true}
}

func moduleLoad(pid int) adapter.DebugEvent {
	return adapter.DebugEvent{Kind: adapter.EventModuleLoad, PID: pid, TID: pid, Module: appModule, Stopped: true}
}

func breakpoint(pid int, line int) adapter.DebugEvent {
	return adapter.DebugEvent{Kind: adapter.EventBreakpoint, PID: pid, TID: pid, Address: lineAddress(line), Stopped: true}
}

func processExit(pid, code int) adapter.DebugEvent {
	return adapter.DebugEvent{Kind: adapter.EventProcessExit, PID: pid, TID: pid, ExitCode: code}
}

func testEngineArgs(t *testing.T) EngineArgs {
	t.Helper()

	filter, err := NewScopeFilter(m.ScopeFilterSettings{})
	require.NoError(t, err)

	return EngineArgs{
		Start:             m.StartInfo{Path: "/bin/app"},
		Name:              "app",
		Resolver:          staticResolver{symbols: map[m.Path]*ModuleSymbols{appModule.Path: appSymbols()}},
		Filter:            filter,
		Warnings:          NewWarnings(),
		MaxUnmatchedPaths: DefaultMaxUnmatchedPaths,
	}
}

func runScripted(t *testing.T, ctx context.Context, debugger *scriptedDebugger, args EngineArgs) (*m.CoverageData, Engine) {
	t.Helper()

	eng := NewEngine(func() adapter.DebuggerAdapter { return debugger })

	data, err := eng.Run(ctx, args)
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.True(t, debugger.closed)
	assert.Equal(t, m.StateTerminated, eng.State())

	return data, eng
}

func executedLines(t *testing.T, module *m.ModuleCoverage) []int {
	t.Helper()

	file := module.FindFile("/src/main.c")
	require.NotNil(t, file)

	var executed []int

	for _, l := range file.Lines {
		if l.Executed {
			executed = append(executed, l.Number)
		}
	}

	return executed
}

func TestEngine_NormalExit(t *testing.T) {
	debugger := newScriptedDebugger(
		processCreate(rootPID, 0),
		moduleLoad(rootPID),
		breakpoint(rootPID, 1),
		breakpoint(rootPID, 3),
		adapter.DebugEvent{Kind: adapter.EventSignal, PID: rootPID, TID: rootPID, Signal: int(syscall.SIGUSR1), Stopped: true},
		processExit(rootPID, 3),
	)

	args := testEngineArgs(t)
	data, _ := runScripted(t, context.Background(), debugger, args)

	assert.Equal(t, "app", data.Name)
	assert.Equal(t, m.OutcomeNormal, data.Outcome)
	assert.Equal(t, 3, data.ExitCode)

	require.Len(t, data.Modules, 1)
	module := data.Modules[0]
	assert.Equal(t, rootPID, module.ProcessID)
	assert.Equal(t, []int{1, 3}, executedLines(t, module))

	file := module.FindFile("/src/main.c")
	assert.Len(t, file.Lines, 8)

	for _, l := range file.Lines {
		assert.True(t, l.Instrumented, "line %d", l.Number)
		assert.True(t, l.Selected, "line %d", l.Number)
	}

	assert.Len(t, debugger.installed, 9)
	// Line 3 is executed, so its second point is removed as well.
	assert.Equal(t, []uint64{lineAddress(20)}, debugger.removed)
	assert.Contains(t, debugger.resumed, resumeCall{tid: rootPID, signal: int(syscall.SIGUSR1)})
	assert.Contains(t, debugger.resumed, resumeCall{tid: rootPID, signal: 0})
	assert.Zero(t, args.Warnings.Len())
}

func TestEngine_CrashKeepsLinesHitBeforeIt(t *testing.T) {
	events := []adapter.DebugEvent{processCreate(rootPID, 0), moduleLoad(rootPID)}
	for n := 1; n <= 5; n++ {
		events = append(events, breakpoint(rootPID, n))
	}

	events = append(events,
		adapter.DebugEvent{
			Kind: adapter.EventException, PID: rootPID, TID: rootPID,
			Signal: int(syscall.SIGSEGV), Address: 0xdead, Stopped: true,
		},
		adapter.DebugEvent{Kind: adapter.EventProcessExit, PID: rootPID, TID: rootPID, Signal: int(syscall.SIGKILL)},
	)

	debugger := newScriptedDebugger(events...)
	args := testEngineArgs(t)

	data, _ := runScripted(t, context.Background(), debugger, args)

	assert.Equal(t, m.OutcomeCrashed, data.Outcome)
	assert.Equal(t, 128+int(syscall.SIGSEGV), data.ExitCode)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, executedLines(t, data.Modules[0]))
	assert.True(t, debugger.wasKilled())
	assert.Equal(t, []string{"Process 100 crashed with segmentation fault at 0xdead"}, args.Warnings.Messages())
}

func TestEngine_ContinueAfterException(t *testing.T) {
	debugger := newScriptedDebugger(
		processCreate(rootPID, 0),
		moduleLoad(rootPID),
		adapter.DebugEvent{Kind: adapter.EventException, PID: rootPID, TID: rootPID, Signal: int(syscall.SIGFPE), Stopped: true},
		processExit(rootPID, 0),
	)

	args := testEngineArgs(t)
	args.ContinueAfterException = true

	data, _ := runScripted(t, context.Background(), debugger, args)

	assert.Equal(t, m.OutcomeNormal, data.Outcome)
	assert.Contains(t, debugger.resumed, resumeCall{tid: rootPID, signal: int(syscall.SIGFPE)})
	assert.False(t, debugger.wasKilled())
}

func TestEngine_HandledExceptionIsNotACrash(t *testing.T) {
	debugger := newScriptedDebugger(
		processCreate(rootPID, 0),
		moduleLoad(rootPID),
		breakpoint(rootPID, 1),
		adapter.DebugEvent{
			Kind: adapter.EventException, PID: rootPID, TID: rootPID,
			Signal: int(syscall.SIGSEGV), Address: 0xdead, Handled: true, Stopped: true,
		},
		breakpoint(rootPID, 2),
		processExit(rootPID, 0),
	)

	args := testEngineArgs(t)
	data, _ := runScripted(t, context.Background(), debugger, args)

	assert.Equal(t, m.OutcomeNormal, data.Outcome)
	assert.Equal(t, 0, data.ExitCode)
	assert.Equal(t, []int{1, 2}, executedLines(t, data.Modules[0]))
	assert.Contains(t, debugger.resumed, resumeCall{tid: rootPID, signal: int(syscall.SIGSEGV)})
	assert.False(t, debugger.wasKilled())
	assert.Zero(t, args.Warnings.Len())
}

func TestEngine_Children(t *testing.T) {
	script := func() *scriptedDebugger {
		return newScriptedDebugger(
			processCreate(rootPID, 0),
			moduleLoad(rootPID),
			breakpoint(rootPID, 1),
			processCreate(childPID, rootPID),
			breakpoint(childPID, 2),
			processExit(childPID, 0),
			processExit(rootPID, 0),
		)
	}

	t.Run("followed", func(t *testing.T) {
		debugger := script()
		args := testEngineArgs(t)
		args.CoverChildren = true

		data, _ := runScripted(t, context.Background(), debugger, args)

		assert.Equal(t, []int{childPID}, debugger.followed)
		require.Len(t, data.Modules, 2)

		parent, child := data.Modules[0], data.Modules[1]
		assert.Equal(t, rootPID, parent.ProcessID)
		assert.Equal(t, childPID, child.ProcessID)
		assert.Equal(t, []int{1}, executedLines(t, parent))
		assert.Equal(t, []int{1, 2}, executedLines(t, child))
	})

	t.Run("released", func(t *testing.T) {
		debugger := script()

		data, _ := runScripted(t, context.Background(), debugger, testEngineArgs(t))

		assert.Equal(t, []int{childPID}, debugger.released)
		assert.Empty(t, debugger.followed)
		require.Len(t, data.Modules, 1)
		assert.Equal(t, []int{1}, executedLines(t, data.Modules[0]))
	})

	t.Run("unknown parent is released", func(t *testing.T) {
		const orphanPID = 300

		debugger := newScriptedDebugger(
			processCreate(rootPID, 0),
			moduleLoad(rootPID),
			processCreate(orphanPID, 999),
			processExit(rootPID, 0),
		)
		args := testEngineArgs(t)
		args.CoverChildren = true

		data, _ := runScripted(t, context.Background(), debugger, args)

		assert.Equal(t, []int{orphanPID}, debugger.released)
		assert.Empty(t, debugger.followed)
		assert.Len(t, data.Modules, 1)
	})
}

func TestEngine_StoppedFromOutside(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		outcome m.RunOutcome
	}{
		{
			name: "timeout",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 0)
			},
			outcome: m.OutcomeTimedOut,
		},
		{
			name: "cancel",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				return ctx, cancel
			},
			outcome: m.OutcomeCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			debugger := newScriptedDebugger(processCreate(rootPID, 0), moduleLoad(rootPID), breakpoint(rootPID, 2))
			debugger.blockAtEnd = true

			data, _ := runScripted(t, ctx, debugger, testEngineArgs(t))

			assert.Equal(t, tt.outcome, data.Outcome)
			assert.True(t, debugger.wasKilled())
			assert.Equal(t, []int{2}, executedLines(t, data.Modules[0]))
		})
	}
}

func TestEngine_InstallFailureLeavesLineUninstrumented(t *testing.T) {
	debugger := newScriptedDebugger(processCreate(rootPID, 0), moduleLoad(rootPID), processExit(rootPID, 0))
	debugger.installErr = map[uint64]error{lineAddress(4): errors.New("input/output error")}

	args := testEngineArgs(t)
	data, _ := runScripted(t, context.Background(), debugger, args)

	file := data.Modules[0].FindFile("/src/main.c")
	assert.False(t, file.Line(4).Instrumented)
	assert.True(t, file.Line(5).Instrumented)

	require.Equal(t, 1, args.Warnings.Len())
	assert.Contains(t, args.Warnings.Messages()[0], "1 instrumentation points skipped in /bin/app")
	assert.Contains(t, args.Warnings.Messages()[0], ErrInstrumentationInstall.Error())
}

func TestEngine_ModuleSelection(t *testing.T) {
	t.Run("excluded module", func(t *testing.T) {
		debugger := newScriptedDebugger(processCreate(rootPID, 0), moduleLoad(rootPID), processExit(rootPID, 0))

		args := testEngineArgs(t)
		filter, err := NewScopeFilter(m.ScopeFilterSettings{ModuleExcludes: []string{"*/app"}})
		require.NoError(t, err)
		args.Filter = filter

		data, _ := runScripted(t, context.Background(), debugger, args)

		assert.Empty(t, data.Modules)
		assert.Empty(t, debugger.installed)
	})

	t.Run("missing symbols", func(t *testing.T) {
		debugger := newScriptedDebugger(processCreate(rootPID, 0), moduleLoad(rootPID), processExit(rootPID, 0))

		args := testEngineArgs(t)
		args.Resolver = staticResolver{}

		data, _ := runScripted(t, context.Background(), debugger, args)

		assert.Empty(t, data.Modules)
		require.Equal(t, 1, args.Warnings.Len())
		assert.Contains(t, args.Warnings.Messages()[0], "/bin/app")
	})

	t.Run("optimized build warning", func(t *testing.T) {
		debugger := newScriptedDebugger(processCreate(rootPID, 0), moduleLoad(rootPID), processExit(rootPID, 0))

		symbols := appSymbols()
		symbols.Optimized = true

		args := testEngineArgs(t)
		args.Resolver = staticResolver{symbols: map[m.Path]*ModuleSymbols{appModule.Path: symbols}}

		runScripted(t, context.Background(), debugger, args)

		assert.Equal(t, []string{
			"Module /bin/app seems to be built with optimizations, consider --optimized_build",
		}, args.Warnings.Messages())
	})
}

func TestEngine_LaunchFailure(t *testing.T) {
	debugger := adaptermocks.NewMockDebuggerAdapter(t)
	debugger.EXPECT().Launch(mock.Anything, mock.Anything).Return(0, errors.New("exec format error"))
	debugger.EXPECT().Close().Return(nil)

	eng := NewEngine(func() adapter.DebuggerAdapter { return debugger })

	data, err := eng.Run(context.Background(), testEngineArgs(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLaunch)
	assert.Nil(t, data)
	assert.Equal(t, m.StateTerminated, eng.State())
}

func TestEngine_Attach(t *testing.T) {
	debugger := newScriptedDebugger(processCreate(rootPID, 0), processExit(rootPID, 7))

	args := testEngineArgs(t)
	args.Start = m.StartInfo{AttachPID: rootPID}

	data, _ := runScripted(t, context.Background(), debugger, args)

	assert.Equal(t, rootPID, debugger.attached)
	assert.Equal(t, 7, data.ExitCode)
}
