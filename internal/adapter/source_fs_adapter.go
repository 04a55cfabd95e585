// Package adapter contains the infrastructure adapters of linecov: the
// debugger, symbol, filesystem, snapshot and export layers.
package adapter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	m "linecov.dev/pkg/linecov/internal/model"
)

// SourceFSAdapter abstracts filesystem access so the domain layer can be
// tested without touching the disk.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// WriteFile writes content to a file, creating missing parent directories.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// CreateTempDir creates a temporary directory.
	CreateTempDir(ctx context.Context, pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// LookPath resolves a program name the way a shell would.
	LookPath(ctx context.Context, program string) (m.Path, error)

	// AbsPath returns the absolute form of path.
	AbsPath(ctx context.Context, path m.Path) (m.Path, error)
}

// LocalSourceFSAdapter implements SourceFSAdapter on the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return os.WriteFile(string(path), content, perm)
}

// CreateTempDir creates a temporary directory.
func (a *LocalSourceFSAdapter) CreateTempDir(ctx context.Context, pattern string) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(_ context.Context, path m.Path) error {
	return os.RemoveAll(string(path))
}

// LookPath resolves program against PATH when it has no separator.
func (a *LocalSourceFSAdapter) LookPath(ctx context.Context, program string) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resolved, err := exec.LookPath(program)
	if err != nil {
		return "", err
	}

	return a.AbsPath(ctx, m.Path(resolved))
}

// AbsPath returns the absolute form of path.
func (a *LocalSourceFSAdapter) AbsPath(_ context.Context, path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}
