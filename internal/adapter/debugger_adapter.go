package adapter

import (
	"context"
	"errors"
	"fmt"

	m "linecov.dev/pkg/linecov/internal/model"
)

var (
	// ErrUnsupportedPlatform is returned by the debugger on platforms without
	// a tracing backend.
	ErrUnsupportedPlatform = errors.New("only linux/amd64 is supported")
	// ErrUnknownProcess is returned for a process the debugger does not trace.
	ErrUnknownProcess = errors.New("process is not traced")
	// ErrNoMoreEvents is returned by WaitNextEvent once every traced process
	// has exited.
	ErrNoMoreEvents = errors.New("no traced process left")
)

// EventKind identifies a debug event.
type EventKind int

// Debug event kinds.
const (
	EventModuleLoad EventKind = iota
	EventModuleUnload
	EventThreadCreate
	EventThreadExit
	EventProcessCreate
	EventProcessExit
	EventBreakpoint
	EventException
	EventSignal
	EventLoaderBreak
	EventExec
)

func (k EventKind) String() string {
	switch k {
	case EventModuleLoad:
		return "module load"
	case EventModuleUnload:
		return "module unload"
	case EventThreadCreate:
		return "thread create"
	case EventThreadExit:
		return "thread exit"
	case EventProcessCreate:
		return "process create"
	case EventProcessExit:
		return "process exit"
	case EventBreakpoint:
		return "breakpoint"
	case EventException:
		return "exception"
	case EventSignal:
		return "signal"
	case EventLoaderBreak:
		return "loader break"
	case EventExec:
		return "exec"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// ModuleInfo describes a binary image mapped into a process.
type ModuleInfo struct {
	Path m.Path
	Base uint64
	Size uint64
}

// DebugEvent is one notification from the traced process tree. A stop of a
// thread produces one or more events; only the last one has Stopped set.
type DebugEvent struct {
	Kind EventKind
	// PID is the process the event is about. For EventProcessCreate it is
	// the new process.
	PID int
	// TID is the thread that reported the event.
	TID int
	// Stopped means TID stays stopped until Resume is called.
	Stopped bool
	// ParentPID is set for EventProcessCreate of a child process.
	ParentPID int
	// Child is the new thread of EventThreadCreate.
	Child int
	// Address is the trap address for EventBreakpoint and the faulting
	// instruction for EventException.
	Address uint64
	Module  ModuleInfo
	// Signal is set for EventException, EventSignal and for processes
	// killed by a signal.
	Signal int
	// Handled means the thread has a handler installed for the signal of
	// an EventException, so delivering it does not end the process.
	Handled  bool
	ExitCode int
}

// DebuggerAdapter is the capability the instrumentation engine needs from
// the operating system. Every method except Kill must be called from the
// goroutine that drives WaitNextEvent.
type DebuggerAdapter interface {
	// Launch starts the program stopped before its first instruction.
	Launch(ctx context.Context, info m.StartInfo) (int, error)
	// Attach stops a running process.
	Attach(ctx context.Context, pid int) error
	// WaitNextEvent blocks until the next event.
	WaitNextEvent(ctx context.Context) (DebugEvent, error)
	// InstallPoint writes a one-shot trap. The trap is removed by the
	// debugger when it fires.
	InstallPoint(pid int, address uint64) error
	// RemovePoint restores the original instruction at address.
	RemovePoint(pid int, address uint64) error
	// Resume continues a stopped thread, delivering signal when non-zero.
	Resume(tid, signal int) error
	// FollowProcess keeps tracing a new child process with the traps it
	// inherited from its parent.
	FollowProcess(pid int) error
	// ReleaseProcess removes inherited traps from a child and detaches it.
	ReleaseProcess(pid int) error
	// Kill terminates every traced process. It is safe to call from any
	// goroutine.
	Kill() error
	// Close detaches from remaining processes and releases resources.
	Close() error
}
