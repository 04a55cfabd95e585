package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestSnapshotStore_SaveLoad(t *testing.T) {
	store := NewSnapshotStore(NewLocalSourceFSAdapter())
	path := m.Path(filepath.Join(t.TempDir(), "out", "app.cov"))

	want := sampleCoverage()
	require.NoError(t, store.Save(context.Background(), path, want))

	got, err := store.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotStore_LoadRejectsOtherFiles(t *testing.T) {
	store := NewSnapshotStore(NewLocalSourceFSAdapter())
	dir := t.TempDir()

	wrongMagic, err := msgpack.Marshal(&snapshotFile{Magic: "something-else", Schema: snapshotSchemaVersion, Data: sampleCoverage()})
	require.NoError(t, err)

	futureSchema, err := msgpack.Marshal(&snapshotFile{Magic: snapshotMagic, Schema: snapshotSchemaVersion + 1, Data: sampleCoverage()})
	require.NoError(t, err)

	noData, err := msgpack.Marshal(&snapshotFile{Magic: snapshotMagic, Schema: snapshotSchemaVersion})
	require.NoError(t, err)

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "text file", content: []byte("int main(void) { return 0; }\n")},
		{name: "wrong magic", content: wrongMagic},
		{name: "future schema", content: futureSchema},
		{name: "no data", content: noData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".cov")
			require.NoError(t, os.WriteFile(path, tt.content, 0o600))

			_, err := store.Load(context.Background(), m.Path(path))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := store.Load(context.Background(), m.Path(filepath.Join(dir, "missing.cov")))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
