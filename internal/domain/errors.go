package domain

import (
	"errors"
	"fmt"

	m "linecov.dev/pkg/linecov/internal/model"
)

var (
	// ErrConfiguration marks invalid settings detected before any process starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrLaunch marks a failure to launch or attach to the target.
	ErrLaunch = errors.New("cannot start target")
	// ErrSymbolLoad marks a module whose debug information cannot be used.
	ErrSymbolLoad = errors.New("cannot load symbols")
	// ErrInstrumentationInstall marks a trap that could not be written.
	ErrInstrumentationInstall = errors.New("cannot install instrumentation point")
	// ErrMergeConflict marks a structurally invalid coverage input.
	ErrMergeConflict = errors.New("merge conflict")
)

// ConfigurationError reports an invalid setting.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrConfiguration, e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

func configurationError(setting string, err error) error {
	return &ConfigurationError{Setting: setting, Err: err}
}

// SymbolLoadError reports a module skipped because of its debug information.
type SymbolLoadError struct {
	Module m.Path
	Err    error
}

func (e *SymbolLoadError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrSymbolLoad, e.Module, e.Err)
}

func (e *SymbolLoadError) Unwrap() []error {
	return []error{ErrSymbolLoad, e.Err}
}

// InstallError reports an instrumentation point that was skipped.
type InstallError struct {
	Module  m.Path
	Address uint64
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s at %#x in %s: %v", ErrInstrumentationInstall, e.Address, e.Module, e.Err)
}

func (e *InstallError) Unwrap() []error {
	return []error{ErrInstrumentationInstall, e.Err}
}

// MergeConflictError reports a coverage input that was left out of a merge.
type MergeConflictError struct {
	Input  string
	Reason string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrMergeConflict, e.Input, e.Reason)
}

func (e *MergeConflictError) Unwrap() error {
	return ErrMergeConflict
}
