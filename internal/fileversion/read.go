package fileversion

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf16"

	"github.com/conn-castle/vizdeploy/internal/messages"
)

var (
	// ErrNotPE reports that the file is not a readable PE image.
	ErrNotPE = errors.New(messages.FileVersionNotPE)
	// ErrNoVersionResource reports a PE image without a usable VS_VERSIONINFO resource.
	ErrNoVersionResource = errors.New(messages.FileVersionNoResource)
)

const (
	rtVersion              = 16
	resourceDirectoryIndex = 2
	resourceDirHeaderSize  = 16
	resourceEntrySize      = 8
	resourceDataEntrySize  = 16
	highBit                = 0x80000000

	versionInfoKey     = "VS_VERSION_INFO"
	fixedFileInfoSig   = 0xFEEF04BD
	fixedFileInfoSize  = 52
	versionHeaderWords = 3
)

// Read opens path and returns its file version.
// A missing file yields an error matching fs.ErrNotExist.
func Read(path string) (Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return Version{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f)
}

// Parse reads the file version from a PE image.
func Parse(r io.ReaderAt) (Version, error) {
	img, err := pe.NewFile(r)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrNotPE, err)
	}

	tree, err := resourceTree(img)
	if err != nil {
		return Version{}, err
	}
	rva, size, err := tree.versionDataEntry()
	if err != nil {
		return Version{}, err
	}
	blob, err := readRVA(img, rva, size)
	if err != nil {
		return Version{}, err
	}
	return parseVersionInfo(blob)
}

// resourceTree returns the bytes of the resource directory, starting at its root.
// The data directory entry is preferred; images without one fall back to the .rsrc section.
func resourceTree(img *pe.File) (resourceDir, error) {
	if rva, ok := resourceDirectoryRVA(img); ok {
		sec := sectionForRVA(img, rva)
		if sec == nil {
			return resourceDir{}, noVersion(messages.FileVersionResourceOutsideSections)
		}
		data, err := sec.Data()
		if err != nil {
			return resourceDir{}, fmt.Errorf("%w: %v", ErrNotPE, err)
		}
		off := rva - sec.VirtualAddress
		if int(off) >= len(data) {
			return resourceDir{}, noVersion(messages.FileVersionResourceOutsideSections)
		}
		return resourceDir{data: data[off:]}, nil
	}
	sec := img.Section(".rsrc")
	if sec == nil {
		return resourceDir{}, ErrNoVersionResource
	}
	data, err := sec.Data()
	if err != nil {
		return resourceDir{}, fmt.Errorf("%w: %v", ErrNotPE, err)
	}
	return resourceDir{data: data}, nil
}

func resourceDirectoryRVA(img *pe.File) (uint32, bool) {
	var dirs []pe.DataDirectory
	switch oh := img.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:min(int(oh.NumberOfRvaAndSizes), len(oh.DataDirectory))]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:min(int(oh.NumberOfRvaAndSizes), len(oh.DataDirectory))]
	}
	if len(dirs) <= resourceDirectoryIndex {
		return 0, false
	}
	dir := dirs[resourceDirectoryIndex]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return 0, false
	}
	return dir.VirtualAddress, true
}

func sectionForRVA(img *pe.File, rva uint32) *pe.Section {
	for _, sec := range img.Sections {
		span := max(sec.VirtualSize, sec.Size)
		if rva >= sec.VirtualAddress && rva < sec.VirtualAddress+span {
			return sec
		}
	}
	return nil
}

// readRVA reads size bytes at a relative virtual address.
func readRVA(img *pe.File, rva uint32, size uint32) ([]byte, error) {
	sec := sectionForRVA(img, rva)
	if sec == nil {
		return nil, noVersion(messages.FileVersionResourceOutsideSections)
	}
	off := rva - sec.VirtualAddress
	if uint64(off)+uint64(size) > uint64(sec.Size) {
		return nil, noVersion(messages.FileVersionResourceTruncated)
	}
	buf := make([]byte, size)
	if _, err := sec.ReadAt(buf, int64(off)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPE, err)
	}
	return buf, nil
}

type resourceDir struct {
	data []byte
}

type resourceEntry struct {
	id     uint32
	named  bool
	subdir bool
	offset uint32
}

func (d resourceDir) entries(off uint32) ([]resourceEntry, error) {
	if uint64(off)+resourceDirHeaderSize > uint64(len(d.data)) {
		return nil, noVersion(messages.FileVersionResourceTruncated)
	}
	named := binary.LittleEndian.Uint16(d.data[off+12:])
	ids := binary.LittleEndian.Uint16(d.data[off+14:])
	count := int(named) + int(ids)
	start := uint64(off) + resourceDirHeaderSize
	if start+uint64(count)*resourceEntrySize > uint64(len(d.data)) {
		return nil, noVersion(messages.FileVersionResourceTruncated)
	}
	out := make([]resourceEntry, 0, count)
	for i := 0; i < count; i++ {
		pos := start + uint64(i)*resourceEntrySize
		name := binary.LittleEndian.Uint32(d.data[pos:])
		target := binary.LittleEndian.Uint32(d.data[pos+4:])
		out = append(out, resourceEntry{
			id:     name &^ highBit,
			named:  name&highBit != 0,
			subdir: target&highBit != 0,
			offset: target &^ highBit,
		})
	}
	return out, nil
}

// versionDataEntry walks type -> name -> language and returns the RT_VERSION data location.
func (d resourceDir) versionDataEntry() (uint32, uint32, error) {
	types, err := d.entries(0)
	if err != nil {
		return 0, 0, err
	}
	var typeEntry *resourceEntry
	for i := range types {
		if !types[i].named && types[i].id == rtVersion && types[i].subdir {
			typeEntry = &types[i]
			break
		}
	}
	if typeEntry == nil {
		return 0, 0, ErrNoVersionResource
	}

	offset := typeEntry.offset
	// Name and language levels: the first entry at each level wins.
	for level := 0; level < 2; level++ {
		entries, err := d.entries(offset)
		if err != nil {
			return 0, 0, err
		}
		if len(entries) == 0 {
			return 0, 0, ErrNoVersionResource
		}
		entry := entries[0]
		if level == 0 && !entry.subdir {
			return 0, 0, noVersion(messages.FileVersionResourceUnexpectedLeaf)
		}
		if level == 1 && entry.subdir {
			return 0, 0, noVersion(messages.FileVersionResourceTooDeep)
		}
		offset = entry.offset
	}

	if uint64(offset)+resourceDataEntrySize > uint64(len(d.data)) {
		return 0, 0, noVersion(messages.FileVersionResourceTruncated)
	}
	rva := binary.LittleEndian.Uint32(d.data[offset:])
	size := binary.LittleEndian.Uint32(d.data[offset+4:])
	return rva, size, nil
}

// parseVersionInfo extracts VS_FIXEDFILEINFO from a VS_VERSIONINFO block.
func parseVersionInfo(b []byte) (Version, error) {
	if len(b) < versionHeaderWords*2 {
		return Version{}, noVersion(messages.FileVersionResourceTruncated)
	}
	length := int(binary.LittleEndian.Uint16(b))
	if length >= versionHeaderWords*2 && length < len(b) {
		b = b[:length]
	}
	valueLength := int(binary.LittleEndian.Uint16(b[2:]))

	key, end, ok := readUTF16Z(b, versionHeaderWords*2)
	if !ok || key != versionInfoKey {
		return Version{}, noVersion(messages.FileVersionResourceBadKey)
	}
	valueOff := align4(end)
	if valueLength < fixedFileInfoSize || valueOff+fixedFileInfoSize > len(b) {
		return Version{}, noVersion(messages.FileVersionResourceNoFixedInfo)
	}
	fixed := b[valueOff : valueOff+fixedFileInfoSize]
	if binary.LittleEndian.Uint32(fixed) != fixedFileInfoSig {
		return Version{}, noVersion(messages.FileVersionResourceBadSignature)
	}
	ms := binary.LittleEndian.Uint32(fixed[8:])
	ls := binary.LittleEndian.Uint32(fixed[12:])
	return Version{
		Major:    uint16(ms >> 16),
		Minor:    uint16(ms),
		Build:    uint16(ls >> 16),
		Revision: uint16(ls),
	}, nil
}

// readUTF16Z decodes a NUL-terminated UTF-16LE string starting at off.
// It returns the string and the offset just past the terminator.
func readUTF16Z(b []byte, off int) (string, int, bool) {
	var units []uint16
	for i := off; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i:])
		if u == 0 {
			return string(utf16.Decode(units)), i + 2, true
		}
		units = append(units, u)
	}
	return "", 0, false
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func noVersion(detail string) error {
	return fmt.Errorf("%w: %s", ErrNoVersionResource, detail)
}
