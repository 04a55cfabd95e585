package domain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

const pageSize = 0x1000

// LineRef is one source line attributed to an instrumentation point.
type LineRef struct {
	File m.Path
	Line int
}

// Point is a runtime address and every line it executes.
type Point struct {
	Address uint64
	Lines   []LineRef
}

// ModuleSymbols is the resolved line table of one loaded module.
type ModuleSymbols struct {
	Path      m.Path
	Base      uint64
	Optimized bool
	// Points are sorted by address and unique.
	Points []Point
}

// Lookup returns the point at addr.
func (s *ModuleSymbols) Lookup(addr uint64) (Point, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Address >= addr })
	if i < len(s.Points) && s.Points[i].Address == addr {
		return s.Points[i], true
	}

	return Point{}, false
}

// Filter returns a copy keeping only lines accepted by keep. Points left
// without lines are dropped.
func (s *ModuleSymbols) Filter(keep func(LineRef) bool) *ModuleSymbols {
	filtered := &ModuleSymbols{Path: s.Path, Base: s.Base, Optimized: s.Optimized}

	for _, point := range s.Points {
		var lines []LineRef

		for _, ref := range point.Lines {
			if keep(ref) {
				lines = append(lines, ref)
			}
		}

		if len(lines) > 0 {
			filtered.Points = append(filtered.Points, Point{Address: point.Address, Lines: lines})
		}
	}

	return filtered
}

// Files lists the distinct source files referenced by the points, sorted.
func (s *ModuleSymbols) Files() []m.Path {
	seen := make(map[m.Path]struct{})

	var files []m.Path

	for _, point := range s.Points {
		for _, ref := range point.Lines {
			if _, ok := seen[ref.File]; ok {
				continue
			}

			seen[ref.File] = struct{}{}
			files = append(files, ref.File)
		}
	}

	slices.Sort(files)

	return files
}

// Resolver maps a loaded module to its instrumentation points.
type Resolver interface {
	Resolve(ctx context.Context, path m.Path, base uint64, optimized bool) (*ModuleSymbols, error)
}

type resolver struct {
	adapter.SymbolAdapter
	substitutor Substitutor
}

// NewResolver returns a Resolver reading images through symbols and
// rewriting source paths with substitutor.
func NewResolver(symbols adapter.SymbolAdapter, substitutor Substitutor) Resolver {
	return &resolver{SymbolAdapter: symbols, substitutor: substitutor}
}

func (r *resolver) Resolve(ctx context.Context, path m.Path, base uint64, optimized bool) (*ModuleSymbols, error) {
	image, err := r.ReadImage(ctx, path)
	if err != nil {
		slog.Debug("Failed to read image symbols", "module", path, "error", err)
		return nil, &SymbolLoadError{Module: path, Err: err}
	}

	var bias uint64
	if image.Type == adapter.ImageShared {
		bias = base - image.LowVaddr&^(pageSize-1)
	}

	byAddress := make(map[uint64][]LineRef)

	for _, row := range image.Rows {
		if !row.IsStmt && !optimized {
			continue
		}

		ref := LineRef{File: r.substitutor.Rewrite(m.Path(row.File)), Line: row.Line}
		address := row.Address + bias

		if !slices.Contains(byAddress[address], ref) {
			byAddress[address] = append(byAddress[address], ref)
		}
	}

	if len(byAddress) == 0 {
		return nil, &SymbolLoadError{Module: path, Err: fmt.Errorf("no executable lines")}
	}

	symbols := &ModuleSymbols{
		Path:      path,
		Base:      base,
		Optimized: isOptimized(image.Producers),
		Points:    make([]Point, 0, len(byAddress)),
	}

	for address, lines := range byAddress {
		slices.SortFunc(lines, compareLineRefs)
		symbols.Points = append(symbols.Points, Point{Address: address, Lines: lines})
	}

	slices.SortFunc(symbols.Points, func(a, b Point) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		default:
			return 0
		}
	})

	slog.Debug("Resolved module", "module", path, "base", fmt.Sprintf("%#x", base), "points", len(symbols.Points))

	return symbols, nil
}

func compareLineRefs(a, b LineRef) int {
	if a.File != b.File {
		if a.File < b.File {
			return -1
		}

		return 1
	}

	return a.Line - b.Line
}

// isOptimized reports whether the last -O flag of any producer enables
// optimization. A bare -O means -O1.
func isOptimized(producers []string) bool {
	for _, producer := range producers {
		level := ""

		for _, field := range strings.Fields(producer) {
			if strings.HasPrefix(field, "-O") {
				level = field
			}
		}

		if level != "" && level != "-O0" {
			return true
		}
	}

	return false
}
