package adapter

import (
	"context"
	"debug/dwarf"
	"debug/elf"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	m "linecov.dev/pkg/linecov/internal/model"
)

var (
	// ErrNoDebugInfo is returned for images without DWARF line information.
	ErrNoDebugInfo = errors.New("no debug information")
	// ErrStaleDebugInfo is returned when a separate debug file does not
	// belong to the image.
	ErrStaleDebugInfo = errors.New("debug information does not match the image")
)

// DefaultDebugFileDirectory is where distributions install separate debug files.
const DefaultDebugFileDirectory = "/usr/lib/debug"

// ImageType tells how an image is relocated when loaded.
type ImageType int

const (
	// ImageExecutable is linked at a fixed address.
	ImageExecutable ImageType = iota
	// ImageShared is position independent (shared object or PIE).
	ImageShared
)

// LineRow is one row of a DWARF line table, at its link-time address.
type LineRow struct {
	File    string
	Line    int
	Address uint64
	IsStmt  bool
	// Inlined marks the call site of an inlined subroutine.
	Inlined bool
}

// ImageSymbols is the debug information of one binary image.
type ImageSymbols struct {
	Path      m.Path
	Type      ImageType
	LowVaddr  uint64
	BuildID   string
	Producers []string
	Rows      []LineRow
	// DebugFile is where the DWARF data was read from.
	DebugFile m.Path
}

// SymbolAdapter reads line information from binary images.
type SymbolAdapter interface {
	ReadImage(ctx context.Context, path m.Path) (*ImageSymbols, error)
}

// LocalSymbolAdapter reads ELF images with DWARF debug information.
type LocalSymbolAdapter struct {
	debugDirs []string
}

// NewLocalSymbolAdapter constructs a LocalSymbolAdapter. debugDirs are the
// roots searched for separate debug files by build id.
func NewLocalSymbolAdapter(debugDirs ...string) *LocalSymbolAdapter {
	if len(debugDirs) == 0 {
		debugDirs = []string{DefaultDebugFileDirectory}
	}

	return &LocalSymbolAdapter{debugDirs: debugDirs}
}

// ReadImage loads the line table of the image at path.
func (a *LocalSymbolAdapter) ReadImage(ctx context.Context, path m.Path) (symbols *ImageSymbols, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// debug/dwarf panics on some malformed inputs.
	defer func() {
		if recovered := recover(); recovered != nil {
			symbols = nil
			err = fmt.Errorf("panic while parsing debug information of %s: %v", path, recovered)
		}
	}()

	image, err := elf.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	defer func() {
		_ = image.Close()
	}()

	symbols = &ImageSymbols{Path: path, DebugFile: path}

	switch image.Type {
	case elf.ET_EXEC:
		symbols.Type = ImageExecutable
	case elf.ET_DYN:
		symbols.Type = ImageShared
	default:
		return nil, fmt.Errorf("unsupported ELF type %s", image.Type)
	}

	symbols.LowVaddr = lowestLoadAddress(image)
	symbols.BuildID = buildID(image)

	debugImage := image
	if !hasDWARF(image) {
		separate, debugPath, err := a.openSeparateDebugFile(symbols.BuildID)
		if err != nil {
			return nil, err
		}

		defer func() {
			_ = separate.Close()
		}()

		debugImage = separate
		symbols.DebugFile = m.Path(debugPath)
	}

	data, err := debugImage.DWARF()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDebugInfo, err)
	}

	if err := readLineRows(data, symbols); err != nil {
		return nil, err
	}

	if len(symbols.Rows) == 0 {
		return nil, fmt.Errorf("%w: empty line table", ErrNoDebugInfo)
	}

	slog.Debug("Read image symbols", "path", path, "debugFile", symbols.DebugFile, "rows", len(symbols.Rows))

	return symbols, nil
}

func lowestLoadAddress(image *elf.File) uint64 {
	var (
		low   uint64
		found bool
	)

	for _, prog := range image.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}

		if !found || prog.Vaddr < low {
			low = prog.Vaddr
			found = true
		}
	}

	return low
}

func hasDWARF(image *elf.File) bool {
	return image.Section(".debug_info") != nil || image.Section(".zdebug_info") != nil
}

// buildID returns the hex GNU build id of image, or "".
func buildID(image *elf.File) string {
	section := image.Section(".note.gnu.build-id")
	if section == nil {
		return ""
	}

	note, err := section.Data()
	if err != nil || len(note) < 16 {
		return ""
	}

	nameSize := image.ByteOrder.Uint32(note[0:4])
	descSize := image.ByteOrder.Uint32(note[4:8])
	descStart := 12 + (uint64(nameSize)+3)&^3

	if descStart+uint64(descSize) > uint64(len(note)) {
		return ""
	}

	return hex.EncodeToString(note[descStart : descStart+uint64(descSize)])
}

func (a *LocalSymbolAdapter) openSeparateDebugFile(id string) (*elf.File, string, error) {
	if len(id) < 3 {
		return nil, "", ErrNoDebugInfo
	}

	for _, dir := range a.debugDirs {
		candidate := filepath.Join(dir, ".build-id", id[:2], id[2:]+".debug")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		separate, err := elf.Open(candidate)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrNoDebugInfo, err)
		}

		if got := buildID(separate); got != id {
			_ = separate.Close()
			return nil, "", fmt.Errorf("%w: %s has build id %q, want %q", ErrStaleDebugInfo, candidate, got, id)
		}

		return separate, candidate, nil
	}

	return nil, "", ErrNoDebugInfo
}

func readLineRows(data *dwarf.Data, symbols *ImageSymbols) error {
	reader := data.Reader()

	var files []*dwarf.LineFile

	for {
		entry, err := reader.Next()
		if err != nil {
			return fmt.Errorf("read DWARF entry: %w", err)
		}

		if entry == nil {
			return nil
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit, dwarf.TagPartialUnit:
			if producer, ok := entry.Val(dwarf.AttrProducer).(string); ok {
				symbols.Producers = append(symbols.Producers, producer)
			}

			files, err = readUnitLines(data, entry, symbols)
			if err != nil {
				return err
			}
		case dwarf.TagInlinedSubroutine:
			if row, ok := inlinedCallSite(data, entry, files); ok {
				symbols.Rows = append(symbols.Rows, row)
			}
		}
	}
}

func readUnitLines(data *dwarf.Data, unit *dwarf.Entry, symbols *ImageSymbols) ([]*dwarf.LineFile, error) {
	lineReader, err := data.LineReader(unit)
	if err != nil {
		return nil, fmt.Errorf("read line table: %w", err)
	}

	if lineReader == nil {
		return nil, nil
	}

	var entry dwarf.LineEntry

	for {
		err := lineReader.Next(&entry)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read line entry: %w", err)
		}

		if entry.EndSequence || entry.File == nil || entry.Line <= 0 {
			continue
		}

		symbols.Rows = append(symbols.Rows, LineRow{
			File:    entry.File.Name,
			Line:    entry.Line,
			Address: entry.Address,
			IsStmt:  entry.IsStmt,
		})
	}

	return lineReader.Files(), nil
}

// inlinedCallSite attributes the call line of an inlined subroutine to the
// first address of the inlined code.
func inlinedCallSite(data *dwarf.Data, entry *dwarf.Entry, files []*dwarf.LineFile) (LineRow, bool) {
	fileIndex, ok := entry.Val(dwarf.AttrCallFile).(int64)
	if !ok || fileIndex < 0 || int(fileIndex) >= len(files) || files[fileIndex] == nil {
		return LineRow{}, false
	}

	rawLine, ok := entry.Val(dwarf.AttrCallLine).(int64)
	if !ok || rawLine <= 0 {
		return LineRow{}, false
	}

	line, err := safecast.Conv[int](rawLine)
	if err != nil {
		return LineRow{}, false
	}

	address, ok := entry.Val(dwarf.AttrEntrypc).(uint64)
	if !ok {
		ranges, err := data.Ranges(entry)
		if err != nil || len(ranges) == 0 {
			return LineRow{}, false
		}

		address = ranges[0][0]
		for _, r := range ranges[1:] {
			address = min(address, r[0])
		}
	}

	return LineRow{
		File:    files[fileIndex].Name,
		Line:    line,
		Address: address,
		IsStmt:  true,
		Inlined: true,
	}, true
}
