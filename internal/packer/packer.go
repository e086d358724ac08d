// Package packer implements the back_up side of the archive engine: walk
// the source tree, build one container.Member per entry, detect
// hard-link groups, drop excluded entries, run the per-member transform
// pipeline, and hand back a finalized container.Archive ready to write
// (spec.md §4.4).
package packer

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/arcfile/arcfile/internal/aescbc"
	"github.com/arcfile/arcfile/internal/container"
	"github.com/arcfile/arcfile/internal/fsmeta"
	"github.com/arcfile/arcfile/internal/huffman"
	"github.com/arcfile/arcfile/internal/lz77"
	"github.com/arcfile/arcfile/internal/walker"
)

// Options configures one Pack call.
type Options struct {
	Compression container.CompressionMethod
	Encryption  container.EncryptionMethod
	Password    []byte
	// Excluded is the newline-delimited set of paths relative to Source,
	// in the literal format the back_up API accepts (spec.md §6.1).
	Excluded string
	Log      *logrus.Logger
}

// now supplies the creation time stamped on every member and on the
// archive header.
var now = func() time.Time { return time.Now() }

// ParseExcluded splits a newline-delimited exclusion list the way
// original_source/src/back_up/back_up.cpp does: split on '\n' and also
// flush a final non-empty remainder that lacks a trailing newline
// (spec.md §5, supplemented features).
func ParseExcluded(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(raw, "\n") {
		if line != "" {
			set[line] = true
		}
	}
	return set
}

// Pack walks source and returns a finalized, transform-applied archive.
func Pack(source string, opts Options) (*container.Archive, error) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	excluded := ParseExcluded(opts.Excluded)

	entries, err := walker.Walk(source, func(relPath string) bool {
		if excluded[relPath] {
			log.WithField("file", relPath).Warn("excluding entry from archive")
			return true
		}
		return false
	})
	if err != nil {
		return nil, xerrors.Errorf("packer: %w", err)
	}

	members := make([]*container.Member, 0, len(entries))
	primaryByInode := make(map[[2]uint64]string)

	for _, e := range entries {
		m, skip, err := buildMember(e, primaryByInode, log)
		if err != nil {
			return nil, xerrors.Errorf("packer: build member %s: %w", e.RelPath, err)
		}
		if skip {
			continue
		}
		members = append(members, m)
	}

	creationTime := now()
	for _, m := range members {
		if err := applyTransforms(m, opts, creationTime); err != nil {
			return nil, xerrors.Errorf("packer: transform %s: %w", m.Header.FileName, err)
		}
	}

	archive := &container.Archive{Members: members}
	archive.Header.Version = 1
	archive.Finalize(uint64(creationTime.Unix()))
	return archive, nil
}

func buildMember(e walker.Entry, primaryByInode map[[2]uint64]string, log *logrus.Logger) (*container.Member, bool, error) {
	info, err := fsmeta.Lstat(e.AbsPath)
	if err != nil {
		return nil, false, err
	}

	if info.Type == container.TypeSocket || info.Type == container.TypeUnknown {
		log.WithField("file", e.RelPath).Warn("skipping unsupported file type")
		return nil, true, nil
	}

	h := container.MemberHeader{
		UID:                  info.UID,
		GID:                  info.GID,
		UName:                info.UName,
		GName:                info.GName,
		CreationTime:         uint64(time.Now().Unix()),
		LastModificationTime: uint64(info.ModTime.Unix()),
		LastAccessTime:       uint64(info.AccessTime.Unix()),
		Type:                 info.Type,
		Permissions:          info.Permissions,
		FileName:             e.RelPath,
	}

	m := &container.Member{Header: h}

	if info.Type != container.TypeDirectory && info.NumLinks > 1 {
		inodeKey := [2]uint64{info.Dev, info.Ino}
		if primary, ok := primaryByInode[inodeKey]; ok {
			m.MakeHardLinkDuplicate(primary)
			return m, false, nil
		}
		primaryByInode[inodeKey] = e.RelPath
	}

	switch info.Type {
	case container.TypeRegular:
		content, err := os.ReadFile(e.AbsPath)
		if err != nil {
			return nil, false, err
		}
		m.Payload = content
		m.Header.OriginalFileSize = uint64(len(content))
		m.Header.FileSize = uint64(len(content))
	case container.TypeDirectory, container.TypeFIFO:
		// both sizes stay zero
	case container.TypeSymlink:
		m.Header.LinkName = info.LinkTarget
	case container.TypeBlockDevice, container.TypeCharDevice:
		m.Payload = container.EncodeDeviceNumbers(info.Major, info.Minor)
		m.Header.OriginalFileSize = 8
		m.Header.FileSize = 8
	default:
		return nil, true, nil
	}

	return m, false, nil
}

func applyTransforms(m *container.Member, opts Options, creationTime time.Time) error {
	m.Header.Compression = opts.Compression
	m.Header.Encryption = opts.Encryption

	switch opts.Compression {
	case container.CompressionLZ77:
		m.Payload = lz77.Encode(m.Payload)
	case container.CompressionHuffman:
		out, err := huffman.Encode(m.Payload)
		if err != nil {
			return err
		}
		m.Payload = out
	}

	if opts.Encryption == container.EncryptionAES256CBC {
		out, err := aescbc.Encrypt(opts.Password, m.Payload)
		if err != nil {
			return err
		}
		m.Payload = out
	}
	m.Header.FileSize = uint64(len(m.Payload))

	m.Header.CRC32 = container.PayloadCRC32(m.Payload)
	m.Header.CreationTime = uint64(creationTime.Unix())
	m.Header.RefreshChecksum()
	return nil
}
