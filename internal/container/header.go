package container

import (
	"golang.org/x/xerrors"

	"github.com/arcfile/arcfile/internal/bitio"
)

// ErrCorruptedHeader is returned when a decoded header's checksum field does
// not match the checksum recomputed over its own bytes, indicating the
// archive (or a single member) was tampered with or truncated.
var ErrCorruptedHeader = xerrors.New("container: corrupted header")

const (
	archiveHeaderSize     = 38
	memberHeaderFixedSize = 143

	unameFieldLen = 32
	gnameFieldLen = 32
	saltFieldLen  = 16
)

// ArchiveHeader is the fixed-size header at the start of an archive. It
// is written once, then the trailer fields (file_number,
// file_size, original_file_size, checksum, crc_32) are patched back in
// after every member has been written.
type ArchiveHeader struct {
	Version          uint16
	CreationTime     uint64
	FileNumber       uint32
	FileSize         uint64
	OriginalFileSize uint64
	Checksum         uint32
	CRC32            uint32
}

// checksumRanges lists the byte ranges covered by the header checksum, in
// order. The checksum field itself is never part of its own input, and
// crc_32 must already hold its final value before the checksum is taken.
func (h *ArchiveHeader) checksumRanges() [][]byte {
	return [][]byte{
		bitio.AppendUint16(nil, h.Version),
		bitio.AppendUint64(nil, h.CreationTime),
		bitio.AppendUint32(nil, h.FileNumber),
		bitio.AppendUint64(nil, h.FileSize),
		bitio.AppendUint64(nil, h.OriginalFileSize),
		bitio.AppendUint32(nil, h.CRC32),
	}
}

// RefreshChecksum recomputes Checksum from the current field values. CRC32
// must be finalized first.
func (h *ArchiveHeader) RefreshChecksum() {
	h.Checksum = Checksum(h.checksumRanges()...)
}

// VerifyChecksum reports whether Checksum matches the other fields.
func (h *ArchiveHeader) VerifyChecksum() bool {
	return h.Checksum == Checksum(h.checksumRanges()...)
}

// Marshal encodes the header to its on-disk big-endian layout.
func (h *ArchiveHeader) Marshal() []byte {
	b := make([]byte, archiveHeaderSize)
	off := 0
	bitio.PutUint16(b[off:], h.Version)
	off += 2
	bitio.PutUint64(b[off:], h.CreationTime)
	off += 8
	bitio.PutUint32(b[off:], h.FileNumber)
	off += 4
	bitio.PutUint64(b[off:], h.FileSize)
	off += 8
	bitio.PutUint64(b[off:], h.OriginalFileSize)
	off += 8
	bitio.PutUint32(b[off:], h.Checksum)
	off += 4
	bitio.PutUint32(b[off:], h.CRC32)
	return b
}

// UnmarshalArchiveHeader decodes and checksum-verifies an archive header.
func UnmarshalArchiveHeader(b []byte) (*ArchiveHeader, error) {
	if len(b) < archiveHeaderSize {
		return nil, xerrors.Errorf("container: short archive header (%d bytes)", len(b))
	}
	_ = b[archiveHeaderSize-1]

	h := &ArchiveHeader{}
	off := 0
	h.Version = bitio.Uint16(b[off:])
	off += 2
	h.CreationTime = bitio.Uint64(b[off:])
	off += 8
	h.FileNumber = bitio.Uint32(b[off:])
	off += 4
	h.FileSize = bitio.Uint64(b[off:])
	off += 8
	h.OriginalFileSize = bitio.Uint64(b[off:])
	off += 8
	h.Checksum = bitio.Uint32(b[off:])
	off += 4
	h.CRC32 = bitio.Uint32(b[off:])

	if !h.VerifyChecksum() {
		return nil, ErrCorruptedHeader
	}
	return h, nil
}

// MemberHeader is the local header preceding every member's payload.
// Type and Permissions are packed together into a single on-disk word,
// and Compression/Encryption share a single on-disk byte.
type MemberHeader struct {
	UID                  uint32
	GID                  uint32
	UName                string
	GName                string
	CreationTime         uint64
	LastModificationTime uint64
	LastAccessTime       uint64
	Type                 FileType
	Permissions          uint16 // low 9 bits: owner/group/other rwx
	CRC32                uint32
	Checksum             uint32
	Compression          CompressionMethod
	Encryption           EncryptionMethod
	Salt                 [saltFieldLen]byte
	OriginalFileSize     uint64
	FileSize             uint64
	LinkName             string
	FileName             string
}

// HeaderSize returns the on-disk size of this header, fixed part plus the
// variable-length link and file names.
func (m *MemberHeader) HeaderSize() int {
	return memberHeaderFixedSize + len(m.LinkName) + len(m.FileName)
}

func packTypeAndPermissions(t FileType, perm uint16) uint16 {
	var typeBits byte
	if t <= TypeSocket {
		typeBits = byte(t)
	} else {
		typeBits = 0xFF
	}
	permBits := perm & 0x1FF
	b0 := (typeBits << 1) | byte(permBits>>8&0x01)
	b1 := byte(permBits)
	return uint16(b0)<<8 | uint16(b1)
}

func unpackTypeAndPermissions(v uint16) (FileType, uint16) {
	b0 := byte(v >> 8)
	b1 := byte(v)
	permBits := uint16(b0&0x01)<<8 | uint16(b1)
	typeBits := (b0 & 0xFE) >> 1

	var t FileType
	switch typeBits {
	case 0:
		t = TypeNone
	case 1:
		t = TypeRegular
	case 2:
		t = TypeDirectory
	case 3:
		t = TypeSymlink
	case 4:
		t = TypeBlockDevice
	case 5:
		t = TypeCharDevice
	case 6:
		t = TypeFIFO
	case 7:
		t = TypeSocket
	default:
		t = TypeUnknown
	}
	return t, permBits
}

func packCompressionAndEncryption(c CompressionMethod, e EncryptionMethod) byte {
	return (byte(c) << 4) | (byte(e) & 0x0F)
}

func unpackCompressionAndEncryption(b byte) (CompressionMethod, EncryptionMethod) {
	c := CompressionMethod(b >> 4 & 0x0F)
	if c != CompressionNone && c != CompressionLZ77 && c != CompressionHuffman {
		c = CompressionNone
	}
	e := EncryptionMethod(b & 0x0F)
	if e != EncryptionNone && e != EncryptionAES256CBC {
		e = EncryptionNone
	}
	return c, e
}

func putFixedString(b []byte, s string, n int) {
	if len(s) > n {
		s = s[:n]
	}
	copy(b[:n], s)
}

func getFixedString(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}

// checksumRanges lists the byte ranges covered by the member checksum, in
// on-disk order, excluding the checksum field itself. crc_32 must already
// hold its final value.
func (m *MemberHeader) checksumRanges() [][]byte {
	uname := make([]byte, unameFieldLen)
	putFixedString(uname, m.UName, unameFieldLen)
	gname := make([]byte, gnameFieldLen)
	putFixedString(gname, m.GName, gnameFieldLen)

	return [][]byte{
		bitio.AppendUint32(nil, m.UID),
		bitio.AppendUint32(nil, m.GID),
		uname,
		gname,
		bitio.AppendUint64(nil, m.CreationTime),
		bitio.AppendUint64(nil, m.LastModificationTime),
		bitio.AppendUint64(nil, m.LastAccessTime),
		bitio.AppendUint16(nil, packTypeAndPermissions(m.Type, m.Permissions)),
		bitio.AppendUint32(nil, m.CRC32),
		{packCompressionAndEncryption(m.Compression, m.Encryption)},
		m.Salt[:],
		bitio.AppendUint64(nil, m.OriginalFileSize),
		bitio.AppendUint64(nil, m.FileSize),
		bitio.AppendUint16(nil, uint16(len(m.LinkName))),
		bitio.AppendUint16(nil, uint16(len(m.FileName))),
		[]byte(m.LinkName),
		[]byte(m.FileName),
	}
}

// RefreshChecksum recomputes Checksum from the current field values. CRC32
// must be finalized first.
func (m *MemberHeader) RefreshChecksum() {
	m.Checksum = Checksum(m.checksumRanges()...)
}

// VerifyChecksum reports whether Checksum matches the other fields.
func (m *MemberHeader) VerifyChecksum() bool {
	return m.Checksum == Checksum(m.checksumRanges()...)
}

// Marshal encodes the header, including its variable-length names, to its
// on-disk big-endian layout.
func (m *MemberHeader) Marshal() []byte {
	b := make([]byte, m.HeaderSize())
	off := 0

	bitio.PutUint32(b[off:], m.UID)
	off += 4
	bitio.PutUint32(b[off:], m.GID)
	off += 4
	putFixedString(b[off:off+unameFieldLen], m.UName, unameFieldLen)
	off += unameFieldLen
	putFixedString(b[off:off+gnameFieldLen], m.GName, gnameFieldLen)
	off += gnameFieldLen
	bitio.PutUint64(b[off:], m.CreationTime)
	off += 8
	bitio.PutUint64(b[off:], m.LastModificationTime)
	off += 8
	bitio.PutUint64(b[off:], m.LastAccessTime)
	off += 8
	bitio.PutUint16(b[off:], packTypeAndPermissions(m.Type, m.Permissions))
	off += 2
	bitio.PutUint32(b[off:], m.CRC32)
	off += 4
	bitio.PutUint32(b[off:], m.Checksum)
	off += 4
	b[off] = packCompressionAndEncryption(m.Compression, m.Encryption)
	off++
	copy(b[off:off+saltFieldLen], m.Salt[:])
	off += saltFieldLen
	bitio.PutUint64(b[off:], m.OriginalFileSize)
	off += 8
	bitio.PutUint64(b[off:], m.FileSize)
	off += 8
	bitio.PutUint16(b[off:], uint16(len(m.LinkName)))
	off += 2
	bitio.PutUint16(b[off:], uint16(len(m.FileName)))
	off += 2
	off += copy(b[off:], m.LinkName)
	off += copy(b[off:], m.FileName)

	return b[:off]
}

// UnmarshalMemberHeader decodes and checksum-verifies a local member
// header from b, and returns the number of bytes consumed.
func UnmarshalMemberHeader(b []byte) (*MemberHeader, int, error) {
	if len(b) < memberHeaderFixedSize {
		return nil, 0, xerrors.Errorf("container: short member header (%d bytes)", len(b))
	}
	_ = b[memberHeaderFixedSize-1]

	m := &MemberHeader{}
	off := 0
	m.UID = bitio.Uint32(b[off:])
	off += 4
	m.GID = bitio.Uint32(b[off:])
	off += 4
	m.UName = getFixedString(b[off : off+unameFieldLen])
	off += unameFieldLen
	m.GName = getFixedString(b[off : off+gnameFieldLen])
	off += gnameFieldLen
	m.CreationTime = bitio.Uint64(b[off:])
	off += 8
	m.LastModificationTime = bitio.Uint64(b[off:])
	off += 8
	m.LastAccessTime = bitio.Uint64(b[off:])
	off += 8
	m.Type, m.Permissions = unpackTypeAndPermissions(bitio.Uint16(b[off:]))
	off += 2
	m.CRC32 = bitio.Uint32(b[off:])
	off += 4
	m.Checksum = bitio.Uint32(b[off:])
	off += 4
	m.Compression, m.Encryption = unpackCompressionAndEncryption(b[off])
	off++
	copy(m.Salt[:], b[off:off+saltFieldLen])
	off += saltFieldLen
	m.OriginalFileSize = bitio.Uint64(b[off:])
	off += 8
	m.FileSize = bitio.Uint64(b[off:])
	off += 8
	linkNameLen := int(bitio.Uint16(b[off:]))
	off += 2
	fileNameLen := int(bitio.Uint16(b[off:]))
	off += 2

	if len(b) < off+linkNameLen+fileNameLen {
		return nil, 0, xerrors.Errorf("container: short member header names (need %d more bytes)", off+linkNameLen+fileNameLen-len(b))
	}
	m.LinkName = string(b[off : off+linkNameLen])
	off += linkNameLen
	m.FileName = string(b[off : off+fileNameLen])
	off += fileNameLen

	if !m.VerifyChecksum() {
		return nil, 0, ErrCorruptedHeader
	}
	return m, off, nil
}
