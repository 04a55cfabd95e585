// Package pkg provides utilities shared by linecov commands.
package pkg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrSpillClosed is returned when appending to a spill after Close.
var ErrSpillClosed = errors.New("filespill is closed")

// FileSpill stages msgpack records of type T in a temporary file so that
// large values do not have to stay in memory until they are consumed.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	// Append stages item and returns its record index.
	Append(item T) (uint64, error)
	// Get decodes a single record, seeking straight to it.
	Get(index uint64) (T, error)
	// Close stops writing. Records stay readable until Remove.
	Close() error
	// Remove closes the spill and deletes its file.
	Remove() error
}

// countingWriter tracks the offset at which the next record starts.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

type fileSpill[T any] struct {
	mu sync.Mutex

	path    string
	file    *os.File
	buf     *bufio.Writer
	counter *countingWriter
	encoder *msgpack.Encoder
	// offsets holds the start of each record in the file.
	offsets []int64
	// failed is set once an encode error left a partial record behind.
	failed  error
}

// NewFileSpill creates a FileSpill in dir, or in the system temporary
// directory when dir is empty.
func NewFileSpill[T any](dir string) (FileSpill[T], error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("Failed to create spill directory", "path", dir, "error", err)
		return nil, fmt.Errorf("create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "linecov-spill-*.msgpack")
	if err != nil {
		slog.Error("Failed to create spill file", "dir", dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	buf := bufio.NewWriter(file)
	counter := &countingWriter{w: buf}

	slog.Debug("Created spill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		buf:     buf,
		counter: counter,
		encoder: msgpack.NewEncoder(counter),
	}, nil
}

func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return uint64(len(f.offsets))
}

func (f *fileSpill[T]) Path() string {
	return f.path
}

func (f *fileSpill[T]) Append(item T) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failed != nil {
		return 0, f.failed
	}

	if f.file == nil {
		return 0, fmt.Errorf("%w: %s", ErrSpillClosed, f.path)
	}

	index := uint64(len(f.offsets))
	offset := f.counter.n

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("Failed to encode spill record", "path", f.path, "index", index, "error", err)
		f.failed = fmt.Errorf("encode spill record %d: %w", index, err)

		return 0, f.failed
	}

	f.offsets = append(f.offsets, offset)

	return index, nil
}

func (f *fileSpill[T]) Get(index uint64) (T, error) {
	var zero T

	f.mu.Lock()
	defer f.mu.Unlock()

	if index >= uint64(len(f.offsets)) {
		return zero, fmt.Errorf("spill index %d out of bounds (length %d)", index, len(f.offsets))
	}

	reader, closeReader, err := f.open(f.offsets[index])
	if err != nil {
		return zero, err
	}
	defer closeReader()

	var item T
	if err := msgpack.NewDecoder(reader).Decode(&item); err != nil {
		slog.Error("Failed to decode spill record", "path", f.path, "index", index, "error", err)
		return zero, fmt.Errorf("decode spill record %d: %w", index, err)
	}

	return item, nil
}

func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closeLocked()
}

func (f *fileSpill[T]) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.closeLocked(); err != nil {
		return err
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to remove spill", "path", f.path, "error", err)
		return fmt.Errorf("remove spill: %w", err)
	}

	f.offsets = nil

	return nil
}

func (f *fileSpill[T]) closeLocked() error {
	if f.file == nil {
		return nil
	}

	flushErr := f.buf.Flush()
	closeErr := f.file.Close()
	f.file = nil

	if err := errors.Join(flushErr, closeErr); err != nil {
		slog.Error("Failed to close spill", "path", f.path, "error", err)
		return fmt.Errorf("close spill: %w", err)
	}

	slog.Debug("Closed spill", "path", f.path, "records", len(f.offsets))

	return nil
}

// open flushes pending records and returns a reader positioned at offset.
func (f *fileSpill[T]) open(offset int64) (io.Reader, func(), error) {
	if f.file != nil {
		if err := f.buf.Flush(); err != nil {
			return nil, nil, fmt.Errorf("flush spill: %w", err)
		}
	}

	file, err := os.Open(f.path)
	if err != nil {
		slog.Error("Failed to open spill", "path", f.path, "error", err)
		return nil, nil, fmt.Errorf("open spill: %w", err)
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("seek spill: %w", err)
	}

	closeFile := func() {
		if err := file.Close(); err != nil {
			slog.Debug("Failed to close spill reader", "path", f.path, "error", err)
		}
	}

	return bufio.NewReader(file), closeFile, nil
}
