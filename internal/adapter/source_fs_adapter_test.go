package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.c")
	content := "int main(void) {\n  return 0;\n}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(context.Background(), m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := adapter.ReadFile(ctx, m.Path(path))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.c")
	writeTestFile(t, path, "int x;\n")

	info, err := adapter.FileInfo(context.Background(), m.Path(path))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	dirInfo, err := adapter.FileInfo(context.Background(), m.Path(root))
	require.NoError(t, err)
	assert.True(t, dirInfo.IsDir())
}

func TestLocalSourceFSAdapter_WriteFileCreatesParents(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	target := filepath.Join(t.TempDir(), "reports", "nested", "coverage.xml")

	err := adapter.WriteFile(context.Background(), m.Path(target), []byte("<coverage/>"), 0o600)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<coverage/>", string(got))
}

func TestLocalSourceFSAdapter_CreateTempDirAndRemoveAll(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	tmp, err := adapter.CreateTempDir(ctx, "linecov-test-*")
	require.NoError(t, err)

	fi, err := os.Stat(string(tmp))
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	writeTestFile(t, filepath.Join(string(tmp), "snapshot.cov"), "x")

	require.NoError(t, adapter.RemoveAll(ctx, tmp))

	_, err = os.Stat(string(tmp))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	abs, err := adapter.AbsPath(ctx, "relative/file.c")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(string(abs)))

	root := t.TempDir()
	program := filepath.Join(root, "tool")
	require.NoError(t, os.WriteFile(program, []byte("#!/bin/sh\n"), 0o755))

	resolved, err := adapter.LookPath(ctx, program)
	require.NoError(t, err)
	assert.Equal(t, m.Path(program), resolved)

	_, err = adapter.LookPath(ctx, filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
