// Package container implements the on-disk archive format: the archive
// and local member headers, their integrity primitives, and the
// Archive/Member data model members are read into and written from.
package container

import (
	"bufio"
	"io"

	"golang.org/x/xerrors"

	"github.com/arcfile/arcfile/internal/bitio"
)

// linkNameLenOffset/fileNameLenOffset locate the two length fields within
// a member header's fixed-size prefix, needed to know how many further
// bytes to read before the header can be fully parsed.
const (
	linkNameLenOffset = memberHeaderFixedSize - 4
	fileNameLenOffset = memberHeaderFixedSize - 2
)

// Archive is a fully materialized container: its header plus every
// member, in walker order. The whole of a Non-streaming archive lives in
// memory at once, so packing and unpacking both build one of
// these before touching the filesystem or writing the final file.
type Archive struct {
	Header  ArchiveHeader
	Members []*Member
}

// Finalize recomputes the archive-level trailer fields from the current
// members, in the required order: file_number, then the
// two size totals, then creation_time, then crc_32 (over the
// concatenation of every member's crc_32), and checksum last.
func (a *Archive) Finalize(creationTime uint64) {
	a.Header.FileNumber = uint32(len(a.Members))

	var origTotal, sizeTotal uint64
	crcs := make([]byte, 0, 4*len(a.Members))
	for _, m := range a.Members {
		headerSize := uint64(m.Header.HeaderSize())
		origTotal += headerSize + m.Header.OriginalFileSize
		sizeTotal += headerSize + m.Header.FileSize
		crcs = bitio.AppendUint32(crcs, m.Header.CRC32)
	}

	a.Header.OriginalFileSize = uint64(archiveHeaderSize) + origTotal
	a.Header.FileSize = uint64(archiveHeaderSize) + sizeTotal
	a.Header.CreationTime = creationTime
	a.Header.CRC32 = CRC32(crcs)
	a.Header.RefreshChecksum()
}

// WriteTo writes the archive header, then every member's header and
// payload, to w. Because the header's trailer fields depend on the sizes
// of everything that follows, a placeholder header is written first and
// patched in place once every member has been written and Finalize has
// run — the same seek-back-and-patch technique used to close out a
// superblock after its payload is known.
func (a *Archive) WriteTo(w io.WriteSeeker, creationTime uint64) (int64, error) {
	var written int64

	if _, err := w.Write(make([]byte, archiveHeaderSize)); err != nil {
		return written, xerrors.Errorf("container: write placeholder header: %w", err)
	}
	written += archiveHeaderSize

	for _, m := range a.Members {
		hb := m.Header.Marshal()
		if _, err := w.Write(hb); err != nil {
			return written, xerrors.Errorf("container: write member header %q: %w", m.Header.FileName, err)
		}
		written += int64(len(hb))

		if _, err := w.Write(m.Payload); err != nil {
			return written, xerrors.Errorf("container: write member payload %q: %w", m.Header.FileName, err)
		}
		written += int64(len(m.Payload))
	}

	a.Finalize(creationTime)

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return written, xerrors.Errorf("container: seek back to patch header: %w", err)
	}
	if _, err := w.Write(a.Header.Marshal()); err != nil {
		return written, xerrors.Errorf("container: patch archive header: %w", err)
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return written, xerrors.Errorf("container: seek to end after patch: %w", err)
	}

	return written, nil
}

// ReadArchive parses an archive header and every member header and
// payload from r.
func ReadArchive(r io.Reader) (*Archive, error) {
	br := bufio.NewReader(r)

	hb := make([]byte, archiveHeaderSize)
	if _, err := io.ReadFull(br, hb); err != nil {
		return nil, xerrors.Errorf("container: read archive header: %w", err)
	}
	ah, err := UnmarshalArchiveHeader(hb)
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, ah.FileNumber)
	for i := uint32(0); i < ah.FileNumber; i++ {
		m, err := readMember(br)
		if err != nil {
			return nil, xerrors.Errorf("container: read member %d: %w", i, err)
		}
		members = append(members, m)
	}

	return &Archive{Header: *ah, Members: members}, nil
}

func readMember(br *bufio.Reader) (*Member, error) {
	fixed := make([]byte, memberHeaderFixedSize)
	if _, err := io.ReadFull(br, fixed); err != nil {
		return nil, xerrors.Errorf("read fixed header: %w", err)
	}
	linkLen := int(bitio.Uint16(fixed[linkNameLenOffset:]))
	fileLen := int(bitio.Uint16(fixed[fileNameLenOffset:]))

	names := make([]byte, linkLen+fileLen)
	if linkLen+fileLen > 0 {
		if _, err := io.ReadFull(br, names); err != nil {
			return nil, xerrors.Errorf("read header names: %w", err)
		}
	}

	full := append(fixed, names...)
	mh, _, err := UnmarshalMemberHeader(full)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if mh.FileSize > 0 {
		payload = make([]byte, mh.FileSize)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, xerrors.Errorf("read payload: %w", err)
		}
	}

	return &Member{Header: *mh, Payload: payload}, nil
}
