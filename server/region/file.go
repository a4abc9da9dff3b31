// Package region implements the sector-allocated region-file storage
// engine of §4.6: one file per 32x32 chunk region, a fixed-size directory
// in the first sector, and per-file locking so concurrent reads and
// writes against the same region are serialized.
package region

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// SectorSize is the allocation granularity of a region file, in bytes.
const SectorSize = 4096

// RegionSize is the edge length of a region, in chunks. It is duplicated
// from worldstate.RegionSize rather than imported: the region engine works
// purely in terms of bytes and local coordinates and has no dependency on
// the chunk model.
const RegionSize = 32

// chunksPerRegion is the number of directory entries in a region file
// (32x32 chunks).
const chunksPerRegion = RegionSize * RegionSize

// File is a single open region file: its directory header kept in memory
// and its file descriptor. A File is exclusively owned by the Engine that
// opened it; every operation on it is serialized by mu.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
	dir  [chunksPerRegion]int32
}

// index returns the directory slot for local coordinates (lx,ly), each in
// [0,32).
func index(lx, ly int32) int { return int(lx) + int(ly)*RegionSize }

// Open opens (creating if necessary) the region file at path and loads its
// directory header into memory.
func Open(path string) (*File, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	rf := &File{path: path, f: f}

	if !existed {
		if err := rf.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
		return rf, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}
	if info.Size() < SectorSize {
		if err := rf.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
		return rf, nil
	}

	var hdr [SectorSize]byte
	if _, err := f.ReadAt(hdr[:], 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("region: read header %s: %w", path, err)
	}
	for i := 0; i < chunksPerRegion; i++ {
		rf.dir[i] = int32(binary.BigEndian.Uint32(hdr[i*4 : i*4+4]))
	}
	return rf, nil
}

func (rf *File) writeHeader() error {
	var hdr [SectorSize]byte
	if _, err := rf.f.WriteAt(hdr[:], 0); err != nil {
		return fmt.Errorf("region: init header %s: %w", rf.path, err)
	}
	return nil
}

// Has reports whether the slot (lx,ly) has an entry, without touching disk.
func (rf *File) Has(lx, ly int32) bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.dir[index(lx, ly)] != 0
}

// Read returns the bytes stored at (lx,ly), or ok=false if the slot is
// empty or its stored length is invalid (corruption is treated as a miss,
// never as an error the caller must handle).
func (rf *File) Read(lx, ly int32) (data []byte, ok bool, err error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	location := rf.dir[index(lx, ly)]
	if location == 0 {
		return nil, false, nil
	}
	offsetSectors := location >> 8
	sectorCount := location & 0xFF
	if offsetSectors == 0 {
		return nil, false, nil
	}

	var lenBuf [4]byte
	if _, err := rf.f.ReadAt(lenBuf[:], int64(offsetSectors)*SectorSize); err != nil {
		return nil, false, fmt.Errorf("region: read length %s: %w", rf.path, err)
	}
	length := int32(binary.BigEndian.Uint32(lenBuf[:]))
	if length <= 0 || int64(length) > int64(sectorCount)*SectorSize {
		return nil, false, nil
	}

	buf := make([]byte, length)
	if _, err := rf.f.ReadAt(buf, int64(offsetSectors)*SectorSize+4); err != nil {
		return nil, false, fmt.Errorf("region: read payload %s: %w", rf.path, err)
	}
	return buf, true, nil
}

// Write stores data at (lx,ly), reusing the existing allocation in place
// when it still fits, or appending past the current end of file when it
// doesn't (the old sectors are abandoned; nothing compacts the file).
func (rf *File) Write(lx, ly int32, data []byte) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	idx := index(lx, ly)
	oldLocation := rf.dir[idx]
	requiredSectors := (int32(len(data)) + 4 + SectorSize - 1) / SectorSize

	var offsetSectors int32
	if oldLocation != 0 {
		oldOffset := oldLocation >> 8
		oldSectors := oldLocation & 0xFF
		if requiredSectors <= oldSectors {
			offsetSectors = oldOffset
		} else {
			offsetSectors = rf.endSector()
		}
	} else {
		offsetSectors = rf.endSector()
		if offsetSectors == 0 {
			offsetSectors = 1
		}
	}

	// Zero-padded to a whole number of sectors, so the file's length stays
	// sector-aligned and endSector's size/SectorSize division always lands
	// on a free sector rather than reusing the tail of what was just written.
	buf := make([]byte, requiredSectors*SectorSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:], data)
	if _, err := rf.f.WriteAt(buf, int64(offsetSectors)*SectorSize); err != nil {
		return fmt.Errorf("region: write payload %s: %w", rf.path, err)
	}

	newLocation := (offsetSectors << 8) | (requiredSectors & 0xFF)
	rf.dir[idx] = newLocation

	var entry [4]byte
	binary.BigEndian.PutUint32(entry[:], uint32(newLocation))
	if _, err := rf.f.WriteAt(entry[:], int64(idx)*4); err != nil {
		return fmt.Errorf("region: write directory entry %s: %w", rf.path, err)
	}
	return nil
}

// endSector returns the sector offset immediately past the current end of
// the file.
func (rf *File) endSector() int32 {
	info, err := rf.f.Stat()
	if err != nil {
		return 1
	}
	return int32(info.Size() / SectorSize)
}

// Close flushes and releases the file handle. The caller must have
// released any reference to rf before calling Close; rf must not be used
// afterward.
func (rf *File) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if err := rf.f.Sync(); err != nil {
		return fmt.Errorf("region: sync %s: %w", rf.path, err)
	}
	return rf.f.Close()
}
