package unpacker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcfile/arcfile/internal/container"
	"github.com/arcfile/arcfile/internal/packer"
)

func TestInfoReportFormat(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0644))

	archive, err := packer.Pack(root, packer.Options{Compression: container.CompressionLZ77})
	require.NoError(t, err)

	report := Info(archive)
	require.Contains(t, report, "version: 1\n")
	require.Contains(t, report, "compression method: LZ77\n")
	require.Contains(t, report, "all file names:\n")
	require.Contains(t, report, "a.txt\n")
}

func TestRestoreRoundTripRegularAndDirectory(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "etc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "etc", "hosts"), []byte("127.0.0.1 localhost"), 0644))

	archive, err := packer.Pack(src, packer.Options{})
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, Restore(archive, dest, Options{}))

	got, err := os.ReadFile(filepath.Join(dest, "etc", "hosts"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1 localhost", string(got))
}

func TestRestoreHardLinkTopology(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello world"), 0644))
	require.NoError(t, os.Link(filepath.Join(src, "a.txt"), filepath.Join(src, "b.txt")))

	archive, err := packer.Pack(src, packer.Options{})
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, Restore(archive, dest, Options{}))

	aFi, err := os.Stat(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	bFi, err := os.Stat(filepath.Join(dest, "b.txt"))
	require.NoError(t, err)
	require.True(t, os.SameFile(aFi, bFi))

	content, err := os.ReadFile(filepath.Join(dest, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(content))
}

func TestRestoreSymlink(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "real.txt"), []byte("r"), 0644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(src, "link.txt")))

	archive, err := packer.Pack(src, packer.Options{})
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, Restore(archive, dest, Options{}))

	target, err := os.Readlink(filepath.Join(dest, "link.txt"))
	require.NoError(t, err)
	require.Equal(t, "real.txt", target)
}

func TestRestoreEncryptedWrongPassword(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "secret.txt"), []byte("confidential"), 0644))

	archive, err := packer.Pack(src, packer.Options{
		Encryption: container.EncryptionAES256CBC,
		Password:   []byte("Test@123456"),
	})
	require.NoError(t, err)

	dest := t.TempDir()
	err = Restore(archive, dest, Options{Password: []byte("Wrong@123456")})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestRestoreEncryptedRightPassword(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "secret.txt"), []byte("confidential"), 0644))

	archive, err := packer.Pack(src, packer.Options{
		Compression: container.CompressionHuffman,
		Encryption:  container.EncryptionAES256CBC,
		Password:    []byte("Test@123456"),
	})
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, Restore(archive, dest, Options{Password: []byte("Test@123456")}))

	got, err := os.ReadFile(filepath.Join(dest, "secret.txt"))
	require.NoError(t, err)
	require.Equal(t, "confidential", string(got))
}
