package adapter

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	m "linecov.dev/pkg/linecov/internal/model"
)

const (
	auxvEntry  = 9
	deletedTag = " (deleted)"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// mapping is one line of /proc/<pid>/maps.
type mapping struct {
	Start, End uint64
	Perms      string
	Offset     uint64
	Path       string
}

// parseMaps reads the file-backed mappings of a maps listing.
func parseMaps(r io.Reader) ([]mapping, error) {
	var mappings []mapping

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		path := strings.Join(fields[5:], " ")
		if !strings.HasPrefix(path, "/") {
			continue
		}

		bounds := strings.SplitN(fields[0], "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("malformed address range %q", fields[0])
		}

		start, err := strconv.ParseUint(bounds[0], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse start address %q: %w", bounds[0], err)
		}

		end, err := strconv.ParseUint(bounds[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse end address %q: %w", bounds[1], err)
		}

		offset, err := strconv.ParseUint(fields[2], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse offset %q: %w", fields[2], err)
		}

		mappings = append(mappings, mapping{
			Start:  start,
			End:    end,
			Perms:  fields[1],
			Offset: offset,
			Path:   strings.TrimSuffix(path, deletedTag),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read maps: %w", err)
	}

	return mappings, nil
}

// groupModules folds mappings into one ModuleInfo per mapped file that has
// an executable segment. isImage filters out non-ELF files.
func groupModules(mappings []mapping, isImage func(path string) bool) []ModuleInfo {
	type span struct {
		base, end  uint64
		executable bool
	}

	spans := make(map[string]*span)

	var order []string

	for _, mp := range mappings {
		s, ok := spans[mp.Path]
		if !ok {
			s = &span{base: mp.Start, end: mp.End}
			spans[mp.Path] = s
			order = append(order, mp.Path)
		}

		s.base = min(s.base, mp.Start)
		s.end = max(s.end, mp.End)
		s.executable = s.executable || strings.Contains(mp.Perms, "x")
	}

	var modules []ModuleInfo

	for _, path := range order {
		s := spans[path]
		if !s.executable || !isImage(path) {
			continue
		}

		modules = append(modules, ModuleInfo{Path: m.Path(path), Base: s.base, Size: s.end - s.base})
	}

	slices.SortFunc(modules, func(a, b ModuleInfo) int {
		switch {
		case a.Base < b.Base:
			return -1
		case a.Base > b.Base:
			return 1
		default:
			return 0
		}
	})

	return modules
}

// parseAuxvEntry returns AT_ENTRY from a 64-bit auxiliary vector.
func parseAuxvEntry(auxv []byte, order binary.ByteOrder) (uint64, error) {
	for i := 0; i+16 <= len(auxv); i += 16 {
		tag := order.Uint64(auxv[i:])
		if tag == 0 {
			break
		}

		if tag == auxvEntry {
			return order.Uint64(auxv[i+8:]), nil
		}
	}

	return 0, errors.New("AT_ENTRY not found in auxiliary vector")
}

// parseTgid returns the Tgid field of a /proc/<pid>/status listing.
func parseTgid(status []byte) (int, error) {
	for line := range bytes.Lines(status) {
		if value, ok := bytes.CutPrefix(line, []byte("Tgid:")); ok {
			return strconv.Atoi(string(bytes.TrimSpace(value)))
		}
	}

	return 0, errors.New("no Tgid in status")
}

// parseSignalMask returns a hexadecimal signal mask such as SigCgt from a
// /proc/<pid>/status listing.
func parseSignalMask(status []byte, field string) (uint64, error) {
	prefix := []byte(field + ":")

	for line := range bytes.Lines(status) {
		if value, ok := bytes.CutPrefix(line, prefix); ok {
			return strconv.ParseUint(string(bytes.TrimSpace(value)), 16, 64)
		}
	}

	return 0, fmt.Errorf("no %s in status", field)
}

// signalHandled reports whether a thread catches signal without blocking
// it. A blocked or ignored fault is fatal whatever the handler.
func signalHandled(status []byte, signal int) bool {
	if signal < 1 || signal > 64 {
		return false
	}

	bit := uint64(1) << (signal - 1)

	caught, err := parseSignalMask(status, "SigCgt")
	if err != nil || caught&bit == 0 {
		return false
	}

	blocked, err := parseSignalMask(status, "SigBlk")

	return err == nil && blocked&bit == 0
}

func readProcessModules(pid int, isImage func(path string) bool) ([]ModuleInfo, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	mappings, err := parseMaps(f)
	if err != nil {
		return nil, err
	}

	return groupModules(mappings, isImage), nil
}

func readEntryPoint(pid int) (uint64, error) {
	auxv, err := os.ReadFile(fmt.Sprintf("/proc/%d/auxv", pid))
	if err != nil {
		return 0, err
	}

	return parseAuxvEntry(auxv, binary.LittleEndian)
}

func readTgid(tid int) (int, error) {
	status, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", tid))
	if err != nil {
		return 0, err
	}

	return parseTgid(status)
}

func readSignalHandled(tid, signal int) bool {
	status, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", tid))
	if err != nil {
		return false
	}

	return signalHandled(status, signal)
}

// readChildren lists the direct children of every thread of pid.
func readChildren(pid int) []int {
	lists, _ := filepath.Glob(fmt.Sprintf("/proc/%d/task/*/children", pid))

	var children []int

	for _, list := range lists {
		data, err := os.ReadFile(list)
		if err != nil {
			continue
		}

		for _, field := range strings.Fields(string(data)) {
			if child, err := strconv.Atoi(field); err == nil {
				children = append(children, child)
			}
		}
	}

	return children
}

func readThreads(pid int) ([]int, error) {
	entries, err := os.ReadDir(fmt.Sprintf("/proc/%d/task", pid))
	if err != nil {
		return nil, err
	}

	tids := make([]int, 0, len(entries))

	for _, entry := range entries {
		tid, err := strconv.Atoi(entry.Name())
		if err == nil {
			tids = append(tids, tid)
		}
	}

	return tids, nil
}

// imageCache remembers which paths hold ELF images.
type imageCache map[string]bool

func (c imageCache) isImage(path string) bool {
	if known, ok := c[path]; ok {
		return known
	}

	magic := make([]byte, len(elfMagic))

	f, err := os.Open(path)
	if err != nil {
		c[path] = false
		return false
	}

	defer func() {
		_ = f.Close()
	}()

	_, err = io.ReadFull(f, magic)
	c[path] = err == nil && bytes.Equal(magic, elfMagic)

	return c[path]
}
