// Package arcfile implements the three entry points an interactive
// shell or CLI drives: BackUp, Info and Restore. Each wraps the
// internal packer/unpacker/container pipeline and reduces any failure
// to a single human-readable status string, matching the contract
// spec.md §6.1 defines for back_up/info/restore.
package arcfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/orcaman/writerseeker"
	"github.com/sirupsen/logrus"

	"github.com/arcfile/arcfile/internal/container"
	"github.com/arcfile/arcfile/internal/packer"
	"github.com/arcfile/arcfile/internal/unpacker"
)

// OK is the success status both BackUp and Restore return.
const OK = "OK"

// Log is the package-level logger injected into the packer/unpacker. It
// is exported so a caller (e.g. the CLI) can redirect or silence it;
// the core never reads or mutates global state beyond this handle.
var Log = logrus.New()

// BackUp packages source into a new archive at destination. compression
// and encryption select the per-member transform methods by name
// ("NONE"/"LZ77"/"HUFFMAN", "NONE"/"AES_256_CBC"); excluded is a
// newline-delimited set of paths relative to source. Returns "OK" on
// success, or a descriptive error message otherwise (spec.md §6.1).
func BackUp(source, destination, compression, encryption, password, excluded string) string {
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("source directory does not exist: %s", source)
		}
		return fmt.Sprintf("could not stat source: %v", err)
	}

	cm, ok := container.ParseCompressionMethod(compression)
	if !ok {
		return "compression method was not recognised."
	}
	em, ok := container.ParseEncryptionMethod(encryption)
	if !ok {
		return "encryption method was not recognised."
	}

	archive, err := packer.Pack(source, packer.Options{
		Compression: cm,
		Encryption:  em,
		Password:    []byte(password),
		Excluded:    excluded,
		Log:         Log,
	})
	if err != nil {
		return fmt.Sprintf("could not pack %s: %v", source, err)
	}

	// The archive header's trailer fields are only known once every
	// member has been written, so the whole container is assembled in
	// an in-memory WriteSeeker first (mirroring the seek-back-and-patch
	// trick used to close out a container after its payload is known),
	// then copied to the destination through a renameio temp file so a
	// crash or full disk never leaves a half-written archive at
	// destination.
	ws := &writerseeker.WriterSeeker{}
	if _, err := archive.WriteTo(ws, uint64(archive.Header.CreationTime)); err != nil {
		return fmt.Sprintf("could not encode archive: %v", err)
	}

	f, err := renameio.TempFile("", destination)
	if err != nil {
		return fmt.Sprintf("could not open destination for write: %v", err)
	}
	defer f.Cleanup()

	if _, err := io.Copy(f, ws.Reader()); err != nil {
		return fmt.Sprintf("could not write destination: %v", err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Sprintf("could not finalize destination: %v", err)
	}

	return OK
}

// Info parses archive and returns the newline-delimited report spec.md
// §4.5.4 defines, or an error message.
func Info(archivePath string) string {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Sprintf("could not open archive: %v", err)
	}
	defer f.Close()

	archive, err := unpacker.Parse(f)
	if err != nil {
		if errors.Is(err, container.ErrCorruptedHeader) {
			return fmt.Sprintf("archive header is corrupted: %v", err)
		}
		return fmt.Sprintf("could not read archive: %v", err)
	}

	return unpacker.Info(archive)
}

// Restore reconstructs the tree stored in archive under destination.
// Returns "OK" on success, or the documented wrong-password message if
// an encrypted member fails to decrypt (spec.md §6.1).
func Restore(archivePath, destination, password string) string {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Sprintf("could not open archive: %v", err)
	}
	defer f.Close()

	archive, err := unpacker.Parse(f)
	if err != nil {
		return fmt.Sprintf("could not read archive: %v", err)
	}

	if err := unpacker.Restore(archive, destination, unpacker.Options{
		Password: []byte(password),
		Log:      Log,
	}); err != nil {
		if errors.Is(err, unpacker.ErrWrongPassword) {
			return fmt.Sprintf("Fail to decrypt the file %s. Wrong password", destination)
		}
		return fmt.Sprintf("could not restore archive: %v", err)
	}

	return OK
}
