//go:build linux && amd64

package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	m "linecov.dev/pkg/linecov/internal/model"
)

const (
	trapInstruction = 0xCC

	traceOptions = unix.PTRACE_O_TRACECLONE |
		unix.PTRACE_O_TRACEFORK |
		unix.PTRACE_O_TRACEVFORK |
		unix.PTRACE_O_TRACEEXEC

	// DefaultRescanInterval bounds how often module maps are reread on stops.
	DefaultRescanInterval = 50 * time.Millisecond
)

var faultSignals = map[unix.Signal]struct{}{
	unix.SIGSEGV: {},
	unix.SIGBUS:  {},
	unix.SIGILL:  {},
	unix.SIGFPE:  {},
	unix.SIGABRT: {},
	unix.SIGSYS:  {},
}

type trap struct {
	original byte
	// user traps belong to the engine, internal ones to the debugger.
	user     bool
	internal bool
	// persistent traps stay in place after they fire.
	persistent bool
}

type trapTable struct {
	points  map[uint64]*trap
	removed map[uint64]struct{}
}

func newTrapTable() *trapTable {
	return &trapTable{points: make(map[uint64]*trap), removed: make(map[uint64]struct{})}
}

func (t *trapTable) clone() *trapTable {
	c := newTrapTable()
	for addr, tp := range t.points {
		copied := *tp
		c.points[addr] = &copied
	}

	maps.Copy(c.removed, t.removed)

	return c
}

type moduleKey struct {
	path m.Path
	base uint64
}

type tracedProcess struct {
	pid     int
	threads map[int]struct{}
	traps   *trapTable
	modules map[moduleKey]ModuleInfo
	// memTID is a stopped thread used for memory access.
	memTID   int
	lastScan time.Time
	// rDebug is the address of the loader's r_debug, zero until known.
	rDebug uint64
	// silent processes are vfork children that share memory with a traced
	// parent but are not covered. They are detached at exec.
	silent bool
}

// pendingChild is a new process waiting for FollowProcess or
// ReleaseProcess, with the parent state it was created from.
type pendingChild struct {
	parent   int
	shared   bool
	traps    *trapTable
	modules  map[moduleKey]ModuleInfo
	lastScan time.Time
	rDebug   uint64
}

type ptraceDebugger struct {
	requests  chan func()
	closeOnce sync.Once

	mu   sync.Mutex
	live map[int]struct{}
	// released processes are no longer traced but still die with the tree.
	released map[int]struct{}

	processes   map[int]*tracedProcess
	threadOwner map[int]int
	children    map[int]pendingChild
	newborn     map[int]unix.WaitStatus
	pending     []DebugEvent
	images      imageCache

	rescanInterval time.Duration
}

// NewDebuggerAdapter returns the ptrace backed DebuggerAdapter.
func NewDebuggerAdapter(rescanInterval time.Duration) DebuggerAdapter {
	if rescanInterval <= 0 {
		rescanInterval = DefaultRescanInterval
	}

	d := &ptraceDebugger{
		requests:       make(chan func()),
		live:           make(map[int]struct{}),
		released:       make(map[int]struct{}),
		processes:      make(map[int]*tracedProcess),
		threadOwner:    make(map[int]int),
		children:       make(map[int]pendingChild),
		newborn:        make(map[int]unix.WaitStatus),
		images:         make(imageCache),
		rescanInterval: rescanInterval,
	}

	go d.serve()

	return d
}

// serve runs every ptrace request on one OS thread, the tracer of all
// traced processes. The thread is never unlocked so it exits with the
// goroutine.
func (d *ptraceDebugger) serve() {
	runtime.LockOSThread()

	for fn := range d.requests {
		fn()
	}
}

func (d *ptraceDebugger) do(fn func()) {
	done := make(chan struct{})
	d.requests <- func() {
		defer close(done)
		fn()
	}
	<-done
}

func (d *ptraceDebugger) Launch(_ context.Context, info m.StartInfo) (int, error) {
	cmd := exec.Command(string(info.Path), info.Args...)
	cmd.Dir = string(info.WorkingDir)
	cmd.Env = append(os.Environ(), info.Env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	var err error

	d.do(func() { err = cmd.Start() })

	if err != nil {
		slog.Error("Failed to start target", "path", info.Path, "error", err)
		return 0, fmt.Errorf("start %s: %w", info.Path, err)
	}

	pid := cmd.Process.Pid

	status, err := d.waitStopped(pid)
	if err != nil {
		return 0, fmt.Errorf("wait for %s to stop: %w", info.Path, err)
	}

	if !status.Stopped() {
		return 0, fmt.Errorf("%s exited before its first instruction", info.Path)
	}

	d.do(func() { err = unix.PtraceSetOptions(pid, traceOptions) })

	if err != nil {
		_ = unix.Kill(pid, unix.SIGKILL)
		return 0, fmt.Errorf("set trace options: %w", err)
	}

	proc := d.track(pid)
	proc.memTID = pid
	mark := len(d.pending)

	d.queue(DebugEvent{Kind: EventProcessCreate, PID: pid, TID: pid})
	d.rescan(proc, pid)
	d.plantEntryTrap(proc)
	d.finishStop(mark, pid, 0)

	slog.Debug("Launched target", "path", info.Path, "pid", pid)

	return pid, nil
}

func (d *ptraceDebugger) Attach(_ context.Context, pid int) error {
	tids, err := readThreads(pid)
	if err != nil {
		return fmt.Errorf("list threads of %d: %w", pid, err)
	}

	proc := d.track(pid)
	proc.memTID = pid

	for _, tid := range tids {
		d.do(func() { err = unix.PtraceAttach(tid) })

		if err != nil {
			if tid == pid {
				d.untrack(pid)
				return fmt.Errorf("attach to %d: %w", pid, err)
			}

			slog.Debug("Thread vanished before attach", "pid", pid, "tid", tid, "error", err)

			continue
		}

		if _, err := d.waitStopped(tid); err != nil {
			return fmt.Errorf("wait for thread %d: %w", tid, err)
		}

		d.do(func() { err = unix.PtraceSetOptions(tid, traceOptions) })

		if err != nil {
			return fmt.Errorf("set trace options on %d: %w", tid, err)
		}

		proc.threads[tid] = struct{}{}
		d.threadOwner[tid] = pid
	}

	for tid := range proc.threads {
		if tid != pid {
			d.cont(tid, 0)
		}
	}

	mark := len(d.pending)
	d.queue(DebugEvent{Kind: EventProcessCreate, PID: pid, TID: pid})
	d.rescan(proc, pid)
	d.plantLoaderHook(proc, pid)
	d.finishStop(mark, pid, 0)

	return nil
}

func (d *ptraceDebugger) WaitNextEvent(_ context.Context) (DebugEvent, error) {
	for len(d.pending) == 0 {
		if len(d.processes) == 0 && len(d.children) == 0 {
			return DebugEvent{}, ErrNoMoreEvents
		}

		var status unix.WaitStatus

		tid, err := unix.Wait4(-1, &status, unix.WALL, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return DebugEvent{}, ErrNoMoreEvents
		case err != nil:
			return DebugEvent{}, fmt.Errorf("wait for debug event: %w", err)
		}

		d.handleStatus(tid, status)
	}

	event := d.pending[0]
	d.pending = d.pending[1:]

	return event, nil
}

func (d *ptraceDebugger) InstallPoint(pid int, address uint64) error {
	proc, ok := d.processes[pid]
	if !ok {
		return ErrUnknownProcess
	}

	if tp, ok := proc.traps.points[address]; ok {
		tp.user = true
		return nil
	}

	original, err := d.writeTrap(proc.memTID, address)
	if err != nil {
		return err
	}

	proc.traps.points[address] = &trap{original: original, user: true}
	delete(proc.traps.removed, address)

	return nil
}

func (d *ptraceDebugger) RemovePoint(pid int, address uint64) error {
	proc, ok := d.processes[pid]
	if !ok {
		return ErrUnknownProcess
	}

	tp, ok := proc.traps.points[address]
	if !ok {
		return nil
	}

	if tp.internal {
		tp.user = false
		return nil
	}

	return d.restoreTrap(proc, proc.memTID, address, tp)
}

func (d *ptraceDebugger) Resume(tid, signal int) error {
	var err error

	d.do(func() { err = unix.PtraceCont(tid, signal) })

	if err != nil {
		return fmt.Errorf("resume thread %d: %w", tid, err)
	}

	return nil
}

func (d *ptraceDebugger) FollowProcess(pid int) error {
	child, ok := d.children[pid]
	if !ok {
		return ErrUnknownProcess
	}

	delete(d.children, pid)

	if err := d.awaitInitialStop(pid); err != nil {
		return err
	}

	proc := d.track(pid)
	proc.memTID = pid
	proc.traps = child.traps
	proc.modules = child.modules
	proc.lastScan = child.lastScan
	proc.rDebug = child.rDebug

	d.cont(pid, 0)

	return nil
}

func (d *ptraceDebugger) ReleaseProcess(pid int) error {
	child, ok := d.children[pid]
	if !ok {
		return ErrUnknownProcess
	}

	delete(d.children, pid)

	if err := d.awaitInitialStop(pid); err != nil {
		return err
	}

	d.mu.Lock()
	d.released[pid] = struct{}{}
	d.mu.Unlock()

	if child.shared {
		proc := d.track(pid)
		proc.memTID = pid
		proc.traps = child.traps
		proc.silent = true
		d.cont(pid, 0)

		return nil
	}

	return d.detachClean(pid, child.traps)
}

// Kill sends SIGKILL to every traced process, every released child and all
// of their descendants. Exits are still reported by WaitNextEvent.
func (d *ptraceDebugger) Kill() error {
	d.mu.Lock()
	roots := slices.Collect(maps.Keys(d.live))
	roots = slices.AppendSeq(roots, maps.Keys(d.released))
	d.mu.Unlock()

	var errs []error

	for _, pid := range processTree(roots) {
		if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			errs = append(errs, fmt.Errorf("kill %d: %w", pid, err))
		}
	}

	return errors.Join(errs...)
}

// processTree returns roots and their living descendants, parents first.
func processTree(roots []int) []int {
	seen := make(map[int]struct{}, len(roots))
	queue := slices.Clone(roots)

	var tree []int

	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]

		if _, ok := seen[pid]; ok {
			continue
		}

		seen[pid] = struct{}{}
		tree = append(tree, pid)
		queue = append(queue, readChildren(pid)...)
	}

	return tree
}

func (d *ptraceDebugger) Close() error {
	d.closeOnce.Do(func() {
		for pid, proc := range d.processes {
			if err := d.detachClean(pid, proc.traps); err != nil {
				slog.Debug("Failed to detach on close", "pid", pid, "error", err)
			}
		}

		close(d.requests)
	})

	return nil
}

func (d *ptraceDebugger) track(pid int) *tracedProcess {
	proc := &tracedProcess{
		pid:     pid,
		threads: map[int]struct{}{pid: {}},
		traps:   newTrapTable(),
		modules: make(map[moduleKey]ModuleInfo),
	}

	d.processes[pid] = proc
	d.threadOwner[pid] = pid

	d.mu.Lock()
	d.live[pid] = struct{}{}
	d.mu.Unlock()

	return proc
}

func (d *ptraceDebugger) untrack(pid int) {
	if proc, ok := d.processes[pid]; ok {
		for tid := range proc.threads {
			delete(d.threadOwner, tid)
		}
	}

	delete(d.processes, pid)

	d.mu.Lock()
	delete(d.live, pid)
	d.mu.Unlock()
}

func (d *ptraceDebugger) queue(event DebugEvent) {
	d.pending = append(d.pending, event)
}

// finishStop hands the stopped thread to the caller of Resume through the
// last event queued since mark, or resumes it when no event was queued.
func (d *ptraceDebugger) finishStop(mark, tid, signal int) {
	if len(d.pending) > mark {
		d.pending[len(d.pending)-1].Stopped = true
		return
	}

	d.cont(tid, signal)
}

func (d *ptraceDebugger) cont(tid, signal int) {
	var err error

	d.do(func() { err = unix.PtraceCont(tid, signal) })

	if err != nil {
		slog.Debug("Failed to continue thread", "tid", tid, "error", err)
	}
}

func (d *ptraceDebugger) waitStopped(tid int) (unix.WaitStatus, error) {
	var status unix.WaitStatus

	for {
		_, err := unix.Wait4(tid, &status, unix.WALL, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		return status, err
	}
}

func (d *ptraceDebugger) awaitInitialStop(tid int) error {
	if _, ok := d.newborn[tid]; ok {
		delete(d.newborn, tid)
		return nil
	}

	status, err := d.waitStopped(tid)
	if err != nil {
		return fmt.Errorf("wait for new thread %d: %w", tid, err)
	}

	if !status.Stopped() {
		return fmt.Errorf("thread %d exited before its first stop", tid)
	}

	return nil
}

func (d *ptraceDebugger) handleStatus(tid int, status unix.WaitStatus) {
	pid, known := d.threadOwner[tid]

	switch {
	case status.Exited() || status.Signaled():
		if known {
			d.handleExit(pid, tid, status)
		}
	case status.Stopped():
		if !known {
			d.newborn[tid] = status
			return
		}

		d.handleStop(d.processes[pid], tid, status)
	}
}

func (d *ptraceDebugger) handleExit(pid, tid int, status unix.WaitStatus) {
	proc := d.processes[pid]
	delete(d.threadOwner, tid)
	delete(proc.threads, tid)

	if tid != pid {
		if !proc.silent {
			d.queue(DebugEvent{Kind: EventThreadExit, PID: pid, TID: tid})
		}

		return
	}

	exitCode, signal := status.ExitStatus(), 0
	if status.Signaled() {
		signal = int(status.Signal())
		exitCode = 128 + signal
	}

	d.untrack(pid)

	if proc.silent {
		return
	}

	d.queue(DebugEvent{Kind: EventProcessExit, PID: pid, TID: tid, ExitCode: exitCode, Signal: signal})
}

func (d *ptraceDebugger) handleStop(proc *tracedProcess, tid int, status unix.WaitStatus) {
	proc.memTID = tid
	signal := status.StopSignal()

	if signal == unix.SIGTRAP {
		switch status.TrapCause() {
		case unix.PTRACE_EVENT_CLONE, unix.PTRACE_EVENT_FORK, unix.PTRACE_EVENT_VFORK:
			d.handleSpawn(proc, tid, status.TrapCause())
			return
		case unix.PTRACE_EVENT_EXEC:
			d.handleExec(proc, tid)
			return
		}

		d.handleTrap(proc, tid)

		return
	}

	if proc.silent {
		d.cont(tid, int(signal))
		return
	}

	mark := len(d.pending)
	d.maybeRescan(proc, tid)

	regs, err := d.registers(tid)
	if err != nil {
		slog.Debug("Failed to read registers", "tid", tid, "error", err)
	}

	event := DebugEvent{Kind: EventSignal, PID: proc.pid, TID: tid, Signal: int(signal), Address: regs.PC()}
	if _, fault := faultSignals[signal]; fault {
		event.Kind = EventException
		event.Handled = readSignalHandled(tid, int(signal))
	}

	d.queue(event)
	d.finishStop(mark, tid, int(signal))
}

func (d *ptraceDebugger) handleTrap(proc *tracedProcess, tid int) {
	regs, err := d.registers(tid)
	if err != nil {
		slog.Debug("Failed to read registers", "tid", tid, "error", err)
		d.cont(tid, 0)

		return
	}

	address := regs.PC() - 1
	tp, planted := proc.traps.points[address]
	_, stale := proc.traps.removed[address]

	if planted || stale {
		regs.SetPC(address)

		if err := d.setRegisters(tid, &regs); err != nil {
			slog.Debug("Failed to rewind program counter", "tid", tid, "error", err)
		}
	}

	switch {
	case planted && proc.silent:
		d.stepOver(proc, tid, address, tp)
		d.cont(tid, 0)
	case planted && tp.persistent:
		d.onLoaderHook(proc, tid, address, tp)
	case planted:
		mark := len(d.pending)

		if err := d.restoreTrap(proc, tid, address, tp); err != nil {
			slog.Debug("Failed to restore instruction", "address", address, "error", err)
		}

		if tp.internal {
			d.rescan(proc, tid)
			d.plantLoaderHook(proc, tid)

			if !tp.user {
				d.queue(DebugEvent{Kind: EventLoaderBreak, PID: proc.pid, TID: tid, Address: address})
			}
		} else {
			d.maybeRescan(proc, tid)
		}

		if tp.user {
			d.queue(DebugEvent{Kind: EventBreakpoint, PID: proc.pid, TID: tid, Address: address})
		}

		d.finishStop(mark, tid, 0)
	case stale:
		d.cont(tid, 0)
	case proc.silent:
		d.cont(tid, int(unix.SIGTRAP))
	default:
		mark := len(d.pending)
		d.queue(DebugEvent{
			Kind:    EventException,
			PID:     proc.pid,
			TID:     tid,
			Signal:  int(unix.SIGTRAP),
			Handled: readSignalHandled(tid, int(unix.SIGTRAP)),
			Address: regs.PC(),
		})
		d.finishStop(mark, tid, int(unix.SIGTRAP))
	}
}

// stepOver executes the original instruction under a trap that must stay
// in place and puts the trap back. The thread stays stopped.
func (d *ptraceDebugger) stepOver(proc *tracedProcess, tid int, address uint64, tp *trap) {
	var err error

	d.do(func() {
		if _, err = unix.PtracePokeData(tid, uintptr(address), []byte{tp.original}); err != nil {
			return
		}

		err = unix.PtraceSingleStep(tid)
	})

	if err == nil {
		_, err = d.waitStopped(tid)
	}

	if err == nil {
		d.do(func() { _, err = unix.PtracePokeData(tid, uintptr(address), []byte{trapInstruction}) })
	}

	if err != nil {
		slog.Debug("Failed to step over trap", "pid", proc.pid, "address", address, "error", err)
	}
}

// onLoaderHook runs when the dynamic loader calls r_brk around a change of
// its link map. Modules are rescanned once the map is consistent again, so
// libraries opened at run time get instrumented before they run.
func (d *ptraceDebugger) onLoaderHook(proc *tracedProcess, tid int, address uint64, tp *trap) {
	mark := len(d.pending)

	d.stepOver(proc, tid, address, tp)

	raw := make([]byte, rDebugSize)

	if err := d.peek(tid, proc.rDebug, raw); err != nil {
		slog.Debug("Failed to read r_debug", "pid", proc.pid, "error", err)
	} else if state, err := parseRDebug(raw); err == nil && state.State == linkMapConsistent {
		d.rescan(proc, tid)
	}

	if tp.user {
		tp.user = false
		d.queue(DebugEvent{Kind: EventBreakpoint, PID: proc.pid, TID: tid, Address: address})
	}

	d.finishStop(mark, tid, 0)
}

// plantLoaderHook finds r_debug through DT_DEBUG of the main executable
// and keeps a trap on r_brk. Static executables have no hook.
func (d *ptraceDebugger) plantLoaderHook(proc *tracedProcess, tid int) {
	if proc.rDebug != 0 {
		return
	}

	address, err := d.findRDebug(proc, tid)
	if err != nil {
		slog.Debug("No loader hook", "pid", proc.pid, "error", err)
		return
	}

	raw := make([]byte, rDebugSize)
	if err := d.peek(tid, address, raw); err != nil {
		slog.Debug("Failed to read r_debug", "pid", proc.pid, "error", err)
		return
	}

	state, err := parseRDebug(raw)
	if err != nil || state.Brk == 0 {
		slog.Debug("Loader did not publish r_brk", "pid", proc.pid, "error", err)
		return
	}

	proc.rDebug = address

	if tp, ok := proc.traps.points[state.Brk]; ok {
		tp.internal, tp.persistent = true, true
		return
	}

	original, err := d.writeTrap(tid, state.Brk)
	if err != nil {
		slog.Debug("Failed to plant loader hook", "pid", proc.pid, "error", err)
		return
	}

	proc.traps.points[state.Brk] = &trap{original: original, internal: true, persistent: true}
	delete(proc.traps.removed, state.Brk)

	slog.Debug("Planted loader hook", "pid", proc.pid, "address", fmt.Sprintf("%#x", state.Brk))
}

func (d *ptraceDebugger) findRDebug(proc *tracedProcess, tid int) (uint64, error) {
	exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", proc.pid))
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}

	exe = strings.TrimSuffix(exe, deletedTag)

	var (
		base  uint64
		found bool
	)

	for key, module := range proc.modules {
		if string(key.path) == exe {
			base, found = module.Base, true
			break
		}
	}

	if !found {
		return 0, fmt.Errorf("executable %s is not mapped", exe)
	}

	segment, err := readDynamicSegment(exe, uint64(os.Getpagesize()))
	if err != nil {
		return 0, err
	}

	dynamic := make([]byte, segment.Size)
	if err := d.peek(tid, base+segment.Offset, dynamic); err != nil {
		return 0, fmt.Errorf("read dynamic section: %w", err)
	}

	return parseDynamicDebug(dynamic)
}

func (d *ptraceDebugger) peek(tid int, address uint64, out []byte) error {
	var err error

	d.do(func() { _, err = unix.PtracePeekData(tid, uintptr(address), out) })

	return err
}

func (d *ptraceDebugger) handleSpawn(proc *tracedProcess, tid, cause int) {
	var (
		msg uint
		err error
	)

	d.do(func() { msg, err = unix.PtraceGetEventMsg(tid) })

	if err != nil {
		slog.Debug("Failed to read new thread id", "tid", tid, "error", err)
		d.cont(tid, 0)

		return
	}

	newID := int(msg)

	if cause == unix.PTRACE_EVENT_CLONE {
		if tgid, err := readTgid(newID); err != nil || tgid == proc.pid {
			d.handleNewThread(proc, tid, newID)
			return
		}
	}

	if proc.silent {
		if err := d.awaitInitialStop(newID); err == nil {
			if err := d.detachClean(newID, proc.traps); err != nil {
				slog.Debug("Failed to detach grandchild", "pid", newID, "error", err)
			}
		}

		d.cont(tid, 0)

		return
	}

	child := pendingChild{
		parent:   proc.pid,
		shared:   cause == unix.PTRACE_EVENT_VFORK,
		traps:    proc.traps,
		modules:  maps.Clone(proc.modules),
		lastScan: proc.lastScan,
		rDebug:   proc.rDebug,
	}

	if !child.shared {
		child.traps = proc.traps.clone()
	}

	d.children[newID] = child

	mark := len(d.pending)
	d.queue(DebugEvent{Kind: EventProcessCreate, PID: newID, ParentPID: proc.pid, TID: tid})
	d.finishStop(mark, tid, 0)
}

func (d *ptraceDebugger) handleNewThread(proc *tracedProcess, tid, newID int) {
	proc.threads[newID] = struct{}{}
	d.threadOwner[newID] = proc.pid

	if err := d.awaitInitialStop(newID); err != nil {
		slog.Debug("New thread did not stop", "tid", newID, "error", err)
	} else {
		d.cont(newID, 0)
	}

	if proc.silent {
		d.cont(tid, 0)
		return
	}

	mark := len(d.pending)
	d.queue(DebugEvent{Kind: EventThreadCreate, PID: proc.pid, TID: tid, Child: newID})
	d.finishStop(mark, tid, 0)
}

func (d *ptraceDebugger) handleExec(proc *tracedProcess, tid int) {
	for t := range proc.threads {
		if t != proc.pid && t != tid {
			delete(d.threadOwner, t)
		}
	}

	proc.threads = map[int]struct{}{tid: {}}
	proc.traps = newTrapTable()
	proc.memTID = tid
	proc.rDebug = 0

	if proc.silent {
		var err error

		d.do(func() { err = unix.PtraceDetach(tid) })

		if err != nil {
			slog.Debug("Failed to detach after exec", "pid", proc.pid, "error", err)
		}

		d.untrack(proc.pid)

		return
	}

	mark := len(d.pending)

	for _, key := range sortedModuleKeys(proc.modules) {
		d.queue(DebugEvent{Kind: EventModuleUnload, PID: proc.pid, TID: tid, Module: proc.modules[key]})
	}

	proc.modules = make(map[moduleKey]ModuleInfo)

	d.rescan(proc, tid)
	d.plantEntryTrap(proc)
	d.queue(DebugEvent{Kind: EventExec, PID: proc.pid, TID: tid})
	d.finishStop(mark, tid, 0)
}

func (d *ptraceDebugger) maybeRescan(proc *tracedProcess, tid int) {
	if time.Since(proc.lastScan) >= d.rescanInterval {
		d.rescan(proc, tid)
	}
}

// rescan diffs the mapped images of proc against the last scan.
func (d *ptraceDebugger) rescan(proc *tracedProcess, tid int) {
	modules, err := readProcessModules(proc.pid, d.images.isImage)
	if err != nil {
		slog.Debug("Failed to read process maps", "pid", proc.pid, "error", err)
		return
	}

	proc.lastScan = time.Now()

	current := make(map[moduleKey]ModuleInfo, len(modules))
	for _, module := range modules {
		current[moduleKey{path: module.Path, base: module.Base}] = module
	}

	for _, key := range sortedModuleKeys(proc.modules) {
		if _, ok := current[key]; !ok {
			d.queue(DebugEvent{Kind: EventModuleUnload, PID: proc.pid, TID: tid, Module: proc.modules[key]})
		}
	}

	for _, module := range modules {
		if _, ok := proc.modules[moduleKey{path: module.Path, base: module.Base}]; !ok {
			d.queue(DebugEvent{Kind: EventModuleLoad, PID: proc.pid, TID: tid, Module: module})
		}
	}

	proc.modules = current
}

func sortedModuleKeys(modules map[moduleKey]ModuleInfo) []moduleKey {
	keys := slices.Collect(maps.Keys(modules))
	slices.SortFunc(keys, func(a, b moduleKey) int {
		switch {
		case a.base < b.base:
			return -1
		case a.base > b.base:
			return 1
		default:
			return 0
		}
	})

	return keys
}

// plantEntryTrap stops the process at its entry point, once the dynamic
// loader has mapped every needed library.
func (d *ptraceDebugger) plantEntryTrap(proc *tracedProcess) {
	entry, err := readEntryPoint(proc.pid)
	if err != nil {
		slog.Debug("No entry point for loader break", "pid", proc.pid, "error", err)
		return
	}

	if tp, ok := proc.traps.points[entry]; ok {
		tp.internal = true
		return
	}

	original, err := d.writeTrap(proc.memTID, entry)
	if err != nil {
		slog.Debug("Failed to plant entry trap", "pid", proc.pid, "error", err)
		return
	}

	proc.traps.points[entry] = &trap{original: original, internal: true}
}

func (d *ptraceDebugger) writeTrap(tid int, address uint64) (byte, error) {
	var (
		original = make([]byte, 1)
		err      error
	)

	d.do(func() {
		if _, err = unix.PtracePeekData(tid, uintptr(address), original); err != nil {
			return
		}

		_, err = unix.PtracePokeData(tid, uintptr(address), []byte{trapInstruction})
	})

	if err != nil {
		return 0, fmt.Errorf("write trap at %#x: %w", address, err)
	}

	return original[0], nil
}

func (d *ptraceDebugger) restoreTrap(proc *tracedProcess, tid int, address uint64, tp *trap) error {
	var err error

	d.do(func() { _, err = unix.PtracePokeData(tid, uintptr(address), []byte{tp.original}) })

	delete(proc.traps.points, address)
	proc.traps.removed[address] = struct{}{}

	if err != nil {
		return fmt.Errorf("restore instruction at %#x: %w", address, err)
	}

	return nil
}

// detachClean restores every trap of traps in the memory of the stopped
// process pid and detaches from it.
func (d *ptraceDebugger) detachClean(pid int, traps *trapTable) error {
	var errs []error

	d.do(func() {
		for address, tp := range traps.points {
			if _, err := unix.PtracePokeData(pid, uintptr(address), []byte{tp.original}); err != nil {
				errs = append(errs, fmt.Errorf("restore %#x: %w", address, err))
			}
		}

		if err := unix.PtraceDetach(pid); err != nil {
			errs = append(errs, fmt.Errorf("detach %d: %w", pid, err))
		}
	})

	d.untrack(pid)

	return errors.Join(errs...)
}

func (d *ptraceDebugger) registers(tid int) (unix.PtraceRegs, error) {
	var (
		regs unix.PtraceRegs
		err  error
	)

	d.do(func() { err = unix.PtraceGetRegs(tid, &regs) })

	return regs, err
}

func (d *ptraceDebugger) setRegisters(tid int, regs *unix.PtraceRegs) error {
	var err error

	d.do(func() { err = unix.PtraceSetRegs(tid, regs) })

	return err
}
