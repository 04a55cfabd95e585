package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"
	m "linecov.dev/pkg/linecov/internal/model"
)

const (
	snapshotMagic = "linecov-snapshot"
	// snapshotSchemaVersion must be incremented when the encoded model changes.
	snapshotSchemaVersion uint16 = 1
)

// ErrInvalidSnapshot is returned for files that are not coverage snapshots.
var ErrInvalidSnapshot = errors.New("not a coverage snapshot")

// SnapshotStore persists coverage data in the binary snapshot format.
type SnapshotStore interface {
	Save(ctx context.Context, path m.Path, data *m.CoverageData) error
	Load(ctx context.Context, path m.Path) (*m.CoverageData, error)
}

type snapshotFile struct {
	Magic  string          `msgpack:"magic"`
	Schema uint16          `msgpack:"schema"`
	Data   *m.CoverageData `msgpack:"data"`
}

type snapshotStore struct {
	SourceFSAdapter
}

// NewSnapshotStore returns a SnapshotStore writing through fsAdapter.
func NewSnapshotStore(fsAdapter SourceFSAdapter) SnapshotStore {
	return &snapshotStore{SourceFSAdapter: fsAdapter}
}

// EncodeSnapshot returns the binary snapshot form of data.
func EncodeSnapshot(data *m.CoverageData) ([]byte, error) {
	return msgpack.Marshal(&snapshotFile{Magic: snapshotMagic, Schema: snapshotSchemaVersion, Data: data})
}

// DecodeSnapshot parses a binary snapshot.
func DecodeSnapshot(content []byte) (*m.CoverageData, error) {
	var file snapshotFile
	if err := msgpack.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if file.Magic != snapshotMagic {
		return nil, ErrInvalidSnapshot
	}

	if file.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema %d", ErrInvalidSnapshot, file.Schema)
	}

	if file.Data == nil {
		return nil, fmt.Errorf("%w: missing coverage data", ErrInvalidSnapshot)
	}

	return file.Data, nil
}

func (s *snapshotStore) Save(ctx context.Context, path m.Path, data *m.CoverageData) error {
	content, err := EncodeSnapshot(data)
	if err != nil {
		slog.Error("Failed to encode snapshot", "path", path, "error", err)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.WriteFile(ctx, path, content, 0o600); err != nil {
		slog.Error("Failed to write snapshot", "path", path, "error", err)
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return nil
}

func (s *snapshotStore) Load(ctx context.Context, path m.Path) (*m.CoverageData, error) {
	content, err := s.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	data, err := DecodeSnapshot(content)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	return data, nil
}
