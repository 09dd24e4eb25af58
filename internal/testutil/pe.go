package testutil

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

const (
	peHeaderOffset   = 0x40
	fileAlignment    = 0x200
	sectionAlignment = 0x1000
	rsrcRVA          = 0x1000
)

// PEImage describes a minimal 32-bit PE image carrying an optional version resource.
type PEImage struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
	// NoVersion omits the RT_VERSION resource, leaving an empty resource directory.
	NoVersion bool
	// NoDataDirectory leaves the optional header's resource data directory empty,
	// so readers must locate the .rsrc section by name.
	NoDataDirectory bool
	// Payload is appended after the section data to make images distinguishable.
	Payload []byte
}

// Bytes renders the image.
func (img PEImage) Bytes() []byte {
	rsrc := img.resourceSection()
	rawSize := alignUp(uint32(len(rsrc)), fileAlignment)

	var buf bytes.Buffer
	dos := make([]byte, peHeaderOffset)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3c:], peHeaderOffset)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	optional := pe.OptionalHeader32{
		Magic:               0x10b,
		SectionAlignment:    sectionAlignment,
		FileAlignment:       fileAlignment,
		SizeOfImage:         rsrcRVA + alignUp(uint32(len(rsrc)), sectionAlignment),
		SizeOfHeaders:       fileAlignment,
		Subsystem:           3,
		NumberOfRvaAndSizes: 16,
	}
	if !img.NoDataDirectory {
		optional.DataDirectory[2] = pe.DataDirectory{VirtualAddress: rsrcRVA, Size: uint32(len(rsrc))}
	}
	header := pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(optional)),
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_32BIT_MACHINE | pe.IMAGE_FILE_DLL,
	}
	section := pe.SectionHeader32{
		VirtualSize:      uint32(len(rsrc)),
		VirtualAddress:   rsrcRVA,
		SizeOfRawData:    rawSize,
		PointerToRawData: fileAlignment,
		Characteristics:  pe.IMAGE_SCN_CNT_INITIALIZED_DATA | pe.IMAGE_SCN_MEM_READ,
	}
	copy(section.Name[:], ".rsrc")

	mustWrite(&buf, header)
	mustWrite(&buf, optional)
	mustWrite(&buf, section)
	buf.Write(make([]byte, fileAlignment-buf.Len()))

	raw := make([]byte, rawSize)
	copy(raw, rsrc)
	buf.Write(raw)
	buf.Write(img.Payload)
	return buf.Bytes()
}

// resourceSection lays out root -> RT_VERSION -> ID 1 -> en-US -> data entry -> VS_VERSIONINFO.
func (img PEImage) resourceSection() []byte {
	var buf bytes.Buffer
	if img.NoVersion {
		writeResourceDir(&buf, 0, 0, 0)
		return buf.Bytes()
	}
	const (
		typeDirOff  = 24
		nameDirOff  = 48
		dataEntry   = 72
		versionInfo = 88
	)
	info := img.versionInfo()
	writeResourceDir(&buf, 16, typeDirOff|0x80000000, 1)
	writeResourceDir(&buf, 1, nameDirOff|0x80000000, 1)
	writeResourceDir(&buf, 0x409, dataEntry, 1)
	mustWrite(&buf, [4]uint32{rsrcRVA + versionInfo, uint32(len(info)), 0, 0})
	buf.Write(info)
	return buf.Bytes()
}

func (img PEImage) versionInfo() []byte {
	key := utf16.Encode([]rune("VS_VERSION_INFO\x00"))
	headerLen := 6 + len(key)*2
	pad := (4 - headerLen%4) % 4
	const fixedSize = 52
	total := headerLen + pad + fixedSize

	var buf bytes.Buffer
	mustWrite(&buf, [3]uint16{uint16(total), fixedSize, 0})
	mustWrite(&buf, key)
	buf.Write(make([]byte, pad))
	fileMS := uint32(img.Major)<<16 | uint32(img.Minor)
	fileLS := uint32(img.Build)<<16 | uint32(img.Revision)
	mustWrite(&buf, [13]uint32{
		0xFEEF04BD, // signature
		0x00010000, // struct version
		fileMS, fileLS,
		fileMS, fileLS, // product version mirrors file version
		0x3f, 0, // flags mask, flags
		0x40004, // VOS_NT_WINDOWS32
		2,       // VFT_DLL
		0, 0, 0,
	})
	return buf.Bytes()
}

// writeResourceDir writes a directory header followed by at most one ID entry.
func writeResourceDir(buf *bytes.Buffer, id uint32, target uint32, count uint16) {
	mustWrite(buf, struct {
		Characteristics, TimeDateStamp uint32
		MajorVersion, MinorVersion     uint16
		NamedEntries, IDEntries        uint16
	}{IDEntries: count})
	if count > 0 {
		mustWrite(buf, [2]uint32{id, target})
	}
}

func mustWrite(buf *bytes.Buffer, v any) {
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func alignUp(n uint32, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}

// WritePE writes img to dir/name and returns the full path.
// t is the active test; dir is the output directory; name is the file name.
func WritePE(t *testing.T, dir string, name string, img PEImage) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
		t.Fatalf("write pe %s: %v", name, err)
	}
	return path
}

// WriteVersioned writes a PE image with the given major.minor version to dir/name.
// The payload tag makes otherwise identical images byte-distinguishable.
func WriteVersioned(t *testing.T, dir string, name string, major uint16, minor uint16, tag string) string {
	t.Helper()
	return WritePE(t, dir, name, PEImage{Major: major, Minor: minor, Payload: []byte(tag)})
}
