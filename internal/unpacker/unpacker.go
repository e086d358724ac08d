// Package unpacker implements the restore and info sides of the archive
// engine: parse an on-disk container.Archive, invert the per-member
// transform pipeline, and materialize the tree in the four ordered
// phases hard links and symlinks require (spec.md §4.5).
package unpacker

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/arcfile/arcfile/internal/aescbc"
	"github.com/arcfile/arcfile/internal/container"
	"github.com/arcfile/arcfile/internal/fsmeta"
	"github.com/arcfile/arcfile/internal/huffman"
	"github.com/arcfile/arcfile/internal/lz77"
)

// ErrCorruptedPayload is returned when the CRC-32 of a member's stored
// payload (before decryption and decompression) does not match its
// header's crc_32 field. spec.md §9 documents this as
// an optional, recommended verification the source itself only performs
// on headers.
var ErrCorruptedPayload = xerrors.New("unpacker: corrupted payload (CRC-32 mismatch)")

// ErrWrongPassword is returned by Restore when an encrypted member fails
// to decrypt, surfaced at the entry point per spec.md §6.1.
var ErrWrongPassword = xerrors.New("unpacker: wrong password or corrupt payload")

// Options configures Restore.
type Options struct {
	Password []byte
	Log      *logrus.Logger
}

// Parse reads and header-verifies an archive from r without applying
// any inverse transform (used by both Info and Restore).
func Parse(r io.Reader) (*container.Archive, error) {
	archive, err := container.ReadArchive(r)
	if err != nil {
		return nil, xerrors.Errorf("unpacker: %w", err)
	}
	return archive, nil
}

// Info renders the newline-delimited report spec.md §4.5.4 and the
// original GUI's line-oriented parser expect.
func Info(archive *container.Archive) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version: %d\n", archive.Header.Version)
	fmt.Fprintf(&b, "file size: %d\n", archive.Header.FileSize)
	fmt.Fprintf(&b, "original file size: %d\n", archive.Header.OriginalFileSize)
	fmt.Fprintf(&b, "creation time: %d\n", archive.Header.CreationTime)
	fmt.Fprintf(&b, "file number: %d\n", archive.Header.FileNumber)

	var compression container.CompressionMethod
	var encryption container.EncryptionMethod
	if len(archive.Members) > 0 {
		compression = archive.Members[0].Header.Compression
		encryption = archive.Members[0].Header.Encryption
	}
	fmt.Fprintf(&b, "compression method: %s\n", compression)
	fmt.Fprintf(&b, "encryption method: %s\n", encryption)

	b.WriteString("all file names:\n")
	for _, m := range archive.Members {
		b.WriteString(m.Header.FileName)
		b.WriteString("\n")
	}
	return b.String()
}

// Restore inverts every member's transform pipeline and materializes the
// tree under dest, in the four ordered phases spec.md §4.5.3 requires.
func Restore(archive *container.Archive, dest string, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	for _, m := range archive.Members {
		if err := invertTransforms(m, opts); err != nil {
			return err
		}
	}

	if err := materializeDirectories(archive, dest); err != nil {
		return err
	}
	if err := materializeContent(archive, dest, log); err != nil {
		return err
	}
	if err := materializeHardLinks(archive, dest); err != nil {
		return err
	}
	if err := materializeSymlinks(archive, dest); err != nil {
		return err
	}
	return nil
}

func invertTransforms(m *container.Member, opts Options) error {
	payload := m.Payload

	if container.PayloadCRC32(payload) != m.Header.CRC32 {
		return xerrors.Errorf("unpacker: member %s: %w", m.Header.FileName, ErrCorruptedPayload)
	}

	if m.Header.Encryption == container.EncryptionAES256CBC {
		out, err := aescbc.Decrypt(opts.Password, payload)
		if err != nil {
			return xerrors.Errorf("unpacker: member %s: %w", m.Header.FileName, ErrWrongPassword)
		}
		payload = out
	}

	switch m.Header.Compression {
	case container.CompressionLZ77:
		payload = lz77.Decode(payload)
	case container.CompressionHuffman:
		out, err := huffman.Decode(payload)
		if err != nil {
			return xerrors.Errorf("unpacker: member %s: decompress: %w", m.Header.FileName, err)
		}
		payload = out
	}

	m.Payload = payload
	m.Header.FileSize = uint64(len(payload))
	return nil
}

func destPath(dest, memberFileName string) string {
	return filepath.Join(dest, filepath.FromSlash(memberFileName))
}

func materializeDirectories(archive *container.Archive, dest string) error {
	for _, m := range archive.Members {
		if m.Kind() != container.KindDirectory {
			continue
		}
		if err := fsmeta.MkdirAll(destPath(dest, m.Header.FileName), m.Header.Permissions); err != nil {
			return xerrors.Errorf("unpacker: phase A: %w", err)
		}
	}
	return nil
}

func materializeContent(archive *container.Archive, dest string, log *logrus.Logger) error {
	for _, m := range archive.Members {
		path := destPath(dest, m.Header.FileName)
		switch m.Kind() {
		case container.KindRegular:
			if err := fsmeta.WriteRegular(path, m.Payload, m.Header.Permissions); err != nil {
				return xerrors.Errorf("unpacker: phase B: %w", err)
			}
		case container.KindFIFO:
			if err := fsmeta.MakeFIFO(path, m.Header.Permissions); err != nil {
				return xerrors.Errorf("unpacker: phase B: %w", err)
			}
		case container.KindDevice:
			major, minor, ok := container.DeviceNumbers(m.Payload)
			if !ok {
				return xerrors.Errorf("unpacker: phase B: member %s: malformed device payload", m.Header.FileName)
			}
			charDevice := m.Header.Type == container.TypeCharDevice
			if err := fsmeta.MakeDevice(path, charDevice, major, minor, m.Header.Permissions); err != nil {
				log.WithField("file", m.Header.FileName).WithError(err).Warn("could not create device node (insufficient privilege?)")
				continue
			}
		}
	}
	return nil
}

func materializeHardLinks(archive *container.Archive, dest string) error {
	for _, m := range archive.Members {
		if m.Kind() != container.KindHardLinkDuplicate {
			continue
		}
		target := destPath(dest, m.Header.LinkName)
		path := destPath(dest, m.Header.FileName)
		if err := fsmeta.MakeHardLink(target, path); err != nil {
			return xerrors.Errorf("unpacker: phase C: %w", err)
		}
	}
	return nil
}

func materializeSymlinks(archive *container.Archive, dest string) error {
	for _, m := range archive.Members {
		if m.Kind() != container.KindSymlink {
			continue
		}
		path := destPath(dest, m.Header.FileName)
		if err := fsmeta.MakeSymlink(m.Header.LinkName, path); err != nil {
			return xerrors.Errorf("unpacker: phase D: %w", err)
		}
	}
	return nil
}
