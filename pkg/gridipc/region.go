package gridipc

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrTooSmall is returned when an existing region file cannot hold a full
// record. Readers branch on it to keep retrying while the writer is still
// creating the region.
var ErrTooSmall = errors.New("gridipc: region smaller than record")

// Region is the mapped (or heap-backed) memory holding one record. The
// sequence word lives at its first four bytes; mmap page alignment, and the
// uint32 backing of heap regions, keep it atomically addressable.
type Region struct {
	data   []byte
	mapped bool
}

// NewMemory returns a process-local region, for tests and in-process
// reader/writer pairs.
func NewMemory() *Region {
	words := make([]uint32, RegionSize/4)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), RegionSize)
	return &Region{data: data}
}

func createRegion(path string) (*Region, error) {
	return mapFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, unix.PROT_READ|unix.PROT_WRITE)
}

func openRegionRW(path string) (*Region, error) {
	return mapFile(path, os.O_RDWR|os.O_CREATE, unix.PROT_READ|unix.PROT_WRITE)
}

func openRegionRO(path string) (*Region, error) {
	return mapFile(path, os.O_RDONLY, unix.PROT_READ)
}

func mapFile(path string, flags int, prot int) (*Region, error) {
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("gridipc: open region: %w", err)
	}
	defer f.Close()

	if flags&os.O_RDWR != 0 {
		if err := f.Truncate(RegionSize); err != nil {
			return nil, fmt.Errorf("gridipc: size region: %w", err)
		}
	} else {
		fi, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("gridipc: stat region: %w", err)
		}
		if fi.Size() < RecordSize {
			return nil, fmt.Errorf("region %s holds %d bytes, record needs %d: %w",
				path, fi.Size(), RecordSize, ErrTooSmall)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, RegionSize, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("gridipc: mmap region: %w", err)
	}
	return &Region{data: data, mapped: true}, nil
}

// Close unmaps a file-backed region. Safe to call more than once.
func (r *Region) Close() error {
	if r == nil || r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if !r.mapped {
		return nil
	}
	r.mapped = false
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("gridipc: munmap region: %w", err)
	}
	return nil
}

func (r *Region) seqWord() *uint32 {
	return (*uint32)(unsafe.Pointer(&r.data[0]))
}
