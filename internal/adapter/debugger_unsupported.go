//go:build !(linux && amd64)

package adapter

import (
	"context"
	"time"

	m "linecov.dev/pkg/linecov/internal/model"
)

// DefaultRescanInterval bounds how often module maps are reread on stops.
const DefaultRescanInterval = 50 * time.Millisecond

type unsupportedDebugger struct{}

// NewDebuggerAdapter returns a DebuggerAdapter that fails every operation.
func NewDebuggerAdapter(time.Duration) DebuggerAdapter {
	return unsupportedDebugger{}
}

func (unsupportedDebugger) Launch(context.Context, m.StartInfo) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (unsupportedDebugger) Attach(context.Context, int) error { return ErrUnsupportedPlatform }

func (unsupportedDebugger) WaitNextEvent(context.Context) (DebugEvent, error) {
	return DebugEvent{}, ErrUnsupportedPlatform
}

func (unsupportedDebugger) InstallPoint(int, uint64) error { return ErrUnsupportedPlatform }
func (unsupportedDebugger) RemovePoint(int, uint64) error { return ErrUnsupportedPlatform }
func (unsupportedDebugger) Resume(int, int) error { return ErrUnsupportedPlatform }
func (unsupportedDebugger) FollowProcess(int) error { return ErrUnsupportedPlatform }
func (unsupportedDebugger) ReleaseProcess(int) error { return ErrUnsupportedPlatform }
func (unsupportedDebugger) Kill() error { return nil }
func (unsupportedDebugger) Close() error { return nil }
