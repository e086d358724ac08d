package arcfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackUpRestoreRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "etc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "etc", "hosts"), []byte("127.0.0.1 localhost"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello world"), 0644))
	require.NoError(t, os.Link(filepath.Join(src, "a.txt"), filepath.Join(src, "b.txt")))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(src, "c.txt")))

	archivePath := filepath.Join(t.TempDir(), "archive.bin")
	status := BackUp(src, archivePath, "LZ77", "NONE", "", "")
	require.Equal(t, OK, status)

	report := Info(archivePath)
	require.Contains(t, report, "compression method: LZ77")
	require.Contains(t, report, "all file names:")

	dest := t.TempDir()
	require.Equal(t, OK, Restore(archivePath, dest, ""))

	got, err := os.ReadFile(filepath.Join(dest, "etc", "hosts"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1 localhost", string(got))

	target, err := os.Readlink(filepath.Join(dest, "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "a.txt", target)

	aFi, err := os.Stat(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	bFi, err := os.Stat(filepath.Join(dest, "b.txt"))
	require.NoError(t, err)
	require.True(t, os.SameFile(aFi, bFi))
}

func TestBackUpRestoreEncrypted(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "secret.txt"), []byte("top secret payload"), 0644))

	archivePath := filepath.Join(t.TempDir(), "archive.bin")
	status := BackUp(src, archivePath, "HUFFMAN", "AES_256_CBC", "Test@123456", "")
	require.Equal(t, OK, status)

	dest := t.TempDir()
	require.Equal(t, OK, Restore(archivePath, dest, "Test@123456"))

	got, err := os.ReadFile(filepath.Join(dest, "secret.txt"))
	require.NoError(t, err)
	require.Equal(t, "top secret payload", string(got))

	dest2 := t.TempDir()
	status = Restore(archivePath, dest2, "Wrong@123456")
	require.Contains(t, status, "Wrong password")
}

func TestBackUpUnknownMethodNames(t *testing.T) {
	src := t.TempDir()
	archivePath := filepath.Join(t.TempDir(), "archive.bin")

	require.Equal(t, "compression method was not recognised.", BackUp(src, archivePath, "BOGUS", "NONE", "", ""))
	require.Equal(t, "encryption method was not recognised.", BackUp(src, archivePath, "NONE", "BOGUS", "", ""))
}

func TestBackUpMissingSource(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.bin")
	status := BackUp(filepath.Join(t.TempDir(), "does-not-exist"), archivePath, "NONE", "NONE", "", "")
	require.Contains(t, status, "does not exist")
}

func TestBackUpExcludedFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.txt"), []byte("k"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "drop.txt"), []byte("d"), 0644))

	archivePath := filepath.Join(t.TempDir(), "archive.bin")
	require.Equal(t, OK, BackUp(src, archivePath, "NONE", "NONE", "", "drop.txt"))

	report := Info(archivePath)
	require.Contains(t, report, "keep.txt")
	require.NotContains(t, report, "drop.txt")
}
