package container

import "github.com/arcfile/arcfile/internal/bitio"

// hardLinkSentinel is the fixed 11-byte payload written for every
// hard-link duplicate in place of its (discarded) regular-file content.
const hardLinkSentinel = "\nhard_link\n"

// Member is one filesystem entity stored in an archive: its header plus
// whatever payload bytes belong to it (possibly compressed/encrypted).
type Member struct {
	Header  MemberHeader
	Payload []byte
}

// Kind classifies a member for dispatch during packing and restore,
// independent of the raw on-disk file type tag.
// A tagged-union read this way lets restore match on Kind instead of
// re-deriving the hard-link/symlink distinction from raw header bits at
// every call site.
type Kind int

const (
	KindDirectory Kind = iota
	KindRegular
	KindSymlink
	KindDevice
	KindFIFO
	KindHardLinkDuplicate
	KindUnsupported
)

// IsHardLinkDuplicate reports whether m stores the 11-byte sentinel
// payload in place of regular-file content.
func (m *Member) IsHardLinkDuplicate() bool {
	return m.Header.LinkName != "" && m.Header.FileSize > 0
}

// Kind classifies m.
func (m *Member) Kind() Kind {
	if m.IsHardLinkDuplicate() {
		return KindHardLinkDuplicate
	}
	switch m.Header.Type {
	case TypeDirectory:
		return KindDirectory
	case TypeRegular:
		return KindRegular
	case TypeSymlink:
		return KindSymlink
	case TypeBlockDevice, TypeCharDevice:
		return KindDevice
	case TypeFIFO:
		return KindFIFO
	default:
		return KindUnsupported
	}
}

// MakeHardLinkDuplicate rewrites m in place into a hard-link duplicate of
// primaryFileName: its payload becomes the fixed sentinel, both sizes
// become its length, and link_name records the primary's path. Any
// previously stored regular-file payload is discarded.
func (m *Member) MakeHardLinkDuplicate(primaryFileName string) {
	m.Header.LinkName = primaryFileName
	m.Header.OriginalFileSize = uint64(len(hardLinkSentinel))
	m.Header.FileSize = uint64(len(hardLinkSentinel))
	m.Payload = []byte(hardLinkSentinel)
}

// EncodeDeviceNumbers packs major/minor into the 8-byte payload used for
// block and character device members.
func EncodeDeviceNumbers(major, minor uint32) []byte {
	b := bitio.AppendUint32(nil, major)
	return bitio.AppendUint32(b, minor)
}

// DeviceNumbers unpacks the 8-byte device payload. ok is false if payload
// is not exactly 8 bytes.
func DeviceNumbers(payload []byte) (major, minor uint32, ok bool) {
	if len(payload) != 8 {
		return 0, 0, false
	}
	return bitio.Uint32(payload), bitio.Uint32(payload[4:]), true
}
