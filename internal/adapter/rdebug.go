package adapter

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// rDebugSize covers r_version, r_map, r_brk and r_state of a 64-bit
	// struct r_debug.
	rDebugSize = 32

	rDebugBrkOffset   = 16
	rDebugStateOffset = 24

	dynamicEntrySize = 16
)

// linkMapState mirrors r_state of struct r_debug.
type linkMapState int32

// Link map states reported through r_debug.
const (
	linkMapConsistent linkMapState = iota
	linkMapAdding
	linkMapDeleting
)

// rDebug is the part of the dynamic loader's struct r_debug the debugger
// reads.
type rDebug struct {
	Brk   uint64
	State linkMapState
}

// parseRDebug decodes a 64-bit little endian struct r_debug.
func parseRDebug(raw []byte) (rDebug, error) {
	if len(raw) < rDebugSize {
		return rDebug{}, fmt.Errorf("r_debug needs %d bytes, got %d", rDebugSize, len(raw))
	}

	return rDebug{
		Brk:   binary.LittleEndian.Uint64(raw[rDebugBrkOffset:]),
		State: linkMapState(int32(binary.LittleEndian.Uint32(raw[rDebugStateOffset:]))),
	}, nil
}

// parseDynamicDebug returns the DT_DEBUG value of a 64-bit dynamic section,
// the address of r_debug once the loader has filled it in.
func parseDynamicDebug(dynamic []byte) (uint64, error) {
	for i := 0; i+dynamicEntrySize <= len(dynamic); i += dynamicEntrySize {
		tag := elf.DynTag(binary.LittleEndian.Uint64(dynamic[i:]))

		switch tag {
		case elf.DT_NULL:
			return 0, errors.New("no DT_DEBUG entry")
		case elf.DT_DEBUG:
			value := binary.LittleEndian.Uint64(dynamic[i+8:])
			if value == 0 {
				return 0, errors.New("DT_DEBUG is not set yet")
			}

			return value, nil
		}
	}

	return 0, errors.New("no DT_DEBUG entry")
}

// dynamicSegment locates PT_DYNAMIC of an image relative to the page where
// its first PT_LOAD segment is mapped.
type dynamicSegment struct {
	Offset uint64
	Size   uint64
}

// readDynamicSegment finds PT_DYNAMIC in the image at path. Static images
// have none.
func readDynamicSegment(path string, pageSize uint64) (dynamicSegment, error) {
	f, err := elf.Open(path)
	if err != nil {
		return dynamicSegment{}, err
	}

	defer func() {
		_ = f.Close()
	}()

	return findDynamicSegment(f.Progs, pageSize)
}

func findDynamicSegment(progs []*elf.Prog, pageSize uint64) (dynamicSegment, error) {
	var (
		load     uint64
		haveLoad bool
		dynamic  *elf.Prog
	)

	for _, prog := range progs {
		switch prog.Type {
		case elf.PT_LOAD:
			if !haveLoad || prog.Vaddr < load {
				load, haveLoad = prog.Vaddr, true
			}
		case elf.PT_DYNAMIC:
			dynamic = prog
		}
	}

	if dynamic == nil || !haveLoad {
		return dynamicSegment{}, errors.New("image has no dynamic segment")
	}

	load &^= pageSize - 1

	return dynamicSegment{Offset: dynamic.Vaddr - load, Size: dynamic.Memsz}, nil
}
