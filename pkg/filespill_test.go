package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stagedRecord struct {
	Index int
	Name  string
	Lines map[string][]int
}

func TestFileSpill_AppendAndGet(t *testing.T) {
	dir := t.TempDir()

	spill, err := NewFileSpill[stagedRecord](dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Remove() })

	assert.Equal(t, dir, filepath.Dir(spill.Path()))
	assert.Equal(t, uint64(0), spill.Len())

	records := []stagedRecord{
		{Index: 0, Name: "nightly", Lines: map[string][]int{"/src/main.c": {3, 4, 7}}},
		{Index: 1, Name: "smoke", Lines: map[string][]int{"/src/util.c": {10}}},
		{Index: 2, Name: "", Lines: nil},
	}

	for i, record := range records {
		index, err := spill.Append(record)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), index)
	}

	assert.Equal(t, uint64(3), spill.Len())

	// Reads before Close see the buffered records.
	got, err := spill.Get(1)
	require.NoError(t, err)
	assert.Equal(t, records[1], got)

	got, err = spill.Get(0)
	require.NoError(t, err)
	assert.Equal(t, records[0], got)

	_, err = spill.Get(3)
	require.Error(t, err)
}

func TestFileSpill_GetAfterCloseFollowsIndexes(t *testing.T) {
	spill, err := NewFileSpill[stagedRecord](t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Remove() })

	indexes := make([]uint64, 50)

	for i := range 50 {
		indexes[i], err = spill.Append(stagedRecord{Index: i, Name: strings.Repeat("x", i)})
		require.NoError(t, err)
	}

	require.NoError(t, spill.Close())

	// Out of order reads land on the right records.
	for i := 49; i >= 0; i -= 7 {
		record, err := spill.Get(indexes[i])
		require.NoError(t, err)
		assert.Equal(t, i, record.Index)
		assert.Len(t, record.Name, i)
	}
}

func TestFileSpill_GetOnEmptySpill(t *testing.T) {
	spill, err := NewFileSpill[int](t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Remove() })

	require.NoError(t, spill.Close())

	_, err = spill.Get(0)
	require.Error(t, err)
}

func TestFileSpill_GetAfterRemove(t *testing.T) {
	spill, err := NewFileSpill[int](t.TempDir())
	require.NoError(t, err)

	_, err = spill.Append(1)
	require.NoError(t, err)
	require.NoError(t, spill.Remove())

	_, err = spill.Get(0)
	require.Error(t, err)
}

func TestFileSpill_AppendAfterClose(t *testing.T) {
	spill, err := NewFileSpill[string](t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Remove() })

	_, err = spill.Append("first")
	require.NoError(t, err)
	require.NoError(t, spill.Close())
	require.NoError(t, spill.Close())

	_, err = spill.Append("late")
	require.ErrorIs(t, err, ErrSpillClosed)
	assert.Equal(t, uint64(1), spill.Len())
}

func TestFileSpill_Remove(t *testing.T) {
	spill, err := NewFileSpill[string](t.TempDir())
	require.NoError(t, err)

	_, err = spill.Append("snapshot")
	require.NoError(t, err)
	require.NoError(t, spill.Remove())

	_, err = os.Stat(spill.Path())
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, spill.Remove())

	_, err = spill.Append("late")
	require.ErrorIs(t, err, ErrSpillClosed)
}

func TestFileSpill_DefaultDirectory(t *testing.T) {
	spill, err := NewFileSpill[int]("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Remove() })

	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(spill.Path()))
}

func TestFileSpill_UnwritableDirectory(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewFileSpill[int](filepath.Join(blocker, "spill"))
	require.Error(t, err)
}

func BenchmarkAppend(b *testing.B) {
	spill, err := NewFileSpill[stagedRecord](b.TempDir())
	if err != nil {
		b.Fatalf("create filespill: %v", err)
	}
	defer func() { _ = spill.Remove() }()

	record := stagedRecord{Name: "bench", Lines: map[string][]int{"/src/main.c": {1, 2, 3}}}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		record.Index = i
		_, _ = spill.Append(record)
	}
}

func BenchmarkGet(b *testing.B) {
	spill, err := NewFileSpill[int](b.TempDir())
	if err != nil {
		b.Fatalf("create filespill: %v", err)
	}
	defer func() { _ = spill.Remove() }()

	for i := range 1000 {
		_, _ = spill.Append(i)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = spill.Get(uint64(i % 1000))
	}
}
