package domain

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// UnboundedWarningPaths disables the cap on listed paths in aggregated warnings.
const UnboundedWarningPaths = -1

// Warnings collects operator warnings raised during a run so they can be
// displayed once at the end.
type Warnings struct {
	mu       sync.Mutex
	messages []string
	seen     map[string]struct{}
}

// NewWarnings returns an empty collector.
func NewWarnings() *Warnings {
	return &Warnings{seen: map[string]struct{}{}}
}

// Add records a warning. Identical messages are kept once.
func (w *Warnings) Add(format string, args ...any) {
	if w == nil {
		return
	}

	msg := fmt.Sprintf(format, args...)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[msg]; ok {
		return
	}

	w.seen[msg] = struct{}{}
	w.messages = append(w.messages, msg)

	slog.Warn(msg)
}

// AddError records err as a warning.
func (w *Warnings) AddError(err error) {
	if err == nil {
		return
	}

	w.Add("%v", err)
}

// AddAggregated records one warning listing at most maxPaths of paths. A
// negative maxPaths lists every path.
func (w *Warnings) AddAggregated(title string, paths []string, maxPaths int) {
	if len(paths) == 0 {
		return
	}

	listed := paths
	if maxPaths >= 0 && len(paths) > maxPaths {
		listed = paths[:maxPaths]
	}

	var b strings.Builder

	b.WriteString(title)

	for _, path := range listed {
		b.WriteString("\n\t")
		b.WriteString(path)
	}

	if rest := len(paths) - len(listed); rest > 0 {
		fmt.Fprintf(&b, "\n\t... and %d more (use --verbose to list all)", rest)
	}

	w.Add("%s", b.String())
}

// Messages returns the recorded warnings in order.
func (w *Warnings) Messages() []string {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, len(w.messages))
	copy(out, w.messages)

	return out
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.messages)
}
