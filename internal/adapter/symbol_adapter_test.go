package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestLocalSymbolAdapter_ReadsOwnBinary(t *testing.T) {
	if testing.Short() {
		t.Skip("reads the DWARF data of the test binary")
	}

	self, err := os.Executable()
	require.NoError(t, err)

	symbols, err := NewLocalSymbolAdapter().ReadImage(context.Background(), m.Path(self))
	if errors.Is(err, ErrNoDebugInfo) {
		t.Skip("test binary was built without debug information")
	}

	require.NoError(t, err)
	assert.Equal(t, m.Path(self), symbols.Path)
	assert.NotEmpty(t, symbols.Producers)

	found := false

	for _, row := range symbols.Rows {
		if strings.HasSuffix(row.File, "symbol_adapter_test.go") && row.Line > 0 {
			found = true
			break
		}
	}

	assert.True(t, found, "no line row for this test file")
}

func TestLocalSymbolAdapter_Errors(t *testing.T) {
	dir := t.TempDir()
	adapter := NewLocalSymbolAdapter(filepath.Join(dir, "debug"))

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(dir, "script.sh")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o600))

		_, err := adapter.ReadImage(context.Background(), m.Path(path))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := adapter.ReadImage(context.Background(), m.Path(filepath.Join(dir, "missing")))
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := adapter.ReadImage(ctx, m.Path(filepath.Join(dir, "missing")))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSymbolAdapter_SeparateDebugFileLookup(t *testing.T) {
	adapter := NewLocalSymbolAdapter(t.TempDir())

	_, _, err := adapter.openSeparateDebugFile("")
	assert.ErrorIs(t, err, ErrNoDebugInfo)

	_, _, err = adapter.openSeparateDebugFile("ab12cd34")
	assert.ErrorIs(t, err, ErrNoDebugInfo)
}

func TestNewLocalSymbolAdapter_DefaultDirectory(t *testing.T) {
	assert.Equal(t, []string{DefaultDebugFileDirectory}, NewLocalSymbolAdapter().debugDirs)
}
