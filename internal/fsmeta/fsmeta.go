// Package fsmeta captures and applies the POSIX filesystem metadata a
// member header carries: file type, permission bits, ownership,
// timestamps, and (for device nodes) the major/minor pair. It is the
// only package that touches raw stat structures and mknod-family
// syscalls, so the packer and unpacker can work purely in terms of
// container.MemberHeader values.
package fsmeta

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
	times "gopkg.in/djherbis/times.v1"

	"github.com/arcfile/arcfile/internal/container"
)

// Info is everything fsmeta can derive about one filesystem entry from
// an lstat-equivalent, independent of the container header layout.
type Info struct {
	Type        container.FileType
	Permissions uint16
	UID, GID    uint32
	UName       string
	GName       string
	ModTime     time.Time
	AccessTime  time.Time
	// Ino identifies the entry for hard-link grouping. Two entries with
	// the same Dev and Ino are the same inode.
	Dev, Ino     uint64
	NumLinks     uint32
	Size         int64
	LinkTarget   string
	Major, Minor uint32
}

// Lstat captures file-type, permission and ownership metadata for path
// without following a trailing symlink, matching the original
// implementation's use of symlink_status() (spec.md §5, supplemented
// features).
func Lstat(path string) (*Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return nil, xerrors.Errorf("fsmeta: lstat %s: %w", path, err)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, xerrors.Errorf("fsmeta: %s: no syscall.Stat_t available", path)
	}

	info := &Info{
		Type:        fileType(fi.Mode()),
		Permissions: uint16(fi.Mode().Perm()),
		UID:         st.Uid,
		GID:         st.Gid,
		Dev:         uint64(st.Dev),
		Ino:         st.Ino,
		NumLinks:    uint32(st.Nlink),
		Size:        fi.Size(),
	}
	info.UName = lookupUserName(st.Uid)
	info.GName = lookupGroupName(st.Gid)

	ts, err := times.Lstat(path)
	if err != nil {
		return nil, xerrors.Errorf("fsmeta: times.Lstat %s: %w", path, err)
	}
	info.ModTime = ts.ModTime()
	info.AccessTime = ts.AccessTime()

	if info.Type == container.TypeSymlink {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, xerrors.Errorf("fsmeta: readlink %s: %w", path, err)
		}
		info.LinkTarget = target
	}
	if info.Type == container.TypeBlockDevice || info.Type == container.TypeCharDevice {
		rdev := uint64(st.Rdev)
		info.Major = unix.Major(rdev)
		info.Minor = unix.Minor(rdev)
	}

	return info, nil
}

func fileType(mode os.FileMode) container.FileType {
	switch {
	case mode&os.ModeSymlink != 0:
		return container.TypeSymlink
	case mode.IsDir():
		return container.TypeDirectory
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice != 0:
		return container.TypeCharDevice
	case mode&os.ModeDevice != 0:
		return container.TypeBlockDevice
	case mode&os.ModeNamedPipe != 0:
		return container.TypeFIFO
	case mode&os.ModeSocket != 0:
		return container.TypeSocket
	case mode.IsRegular():
		return container.TypeRegular
	default:
		return container.TypeUnknown
	}
}

func lookupUserName(uid uint32) string {
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		return u.Username
	}
	return ""
}

func lookupGroupName(gid uint32) string {
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10)); err == nil {
		return g.Name
	}
	return ""
}

// MkdirAll creates dir (idempotent) with the given permissions, as
// required by restore Phase A (spec.md §4.5.3).
func MkdirAll(dir string, perm uint16) error {
	if err := os.MkdirAll(dir, os.FileMode(perm)); err != nil {
		return xerrors.Errorf("fsmeta: mkdir %s: %w", dir, err)
	}
	return os.Chmod(dir, os.FileMode(perm))
}

// WriteRegular creates path with the given content and permissions, as
// required by restore Phase B for regular-file members.
func WriteRegular(path string, content []byte, perm uint16) error {
	if err := os.WriteFile(path, content, os.FileMode(perm)); err != nil {
		return xerrors.Errorf("fsmeta: write %s: %w", path, err)
	}
	return os.Chmod(path, os.FileMode(perm))
}

// MakeFIFO creates a named pipe at path, as required by restore Phase B.
func MakeFIFO(path string, perm uint16) error {
	if err := unix.Mkfifo(path, uint32(perm)); err != nil {
		return xerrors.Errorf("fsmeta: mkfifo %s: %w", path, err)
	}
	return os.Chmod(path, os.FileMode(perm))
}

// MakeDevice creates a block or character device node at path, as
// required by restore Phase B. Creating device nodes typically requires
// elevated privilege; callers surface the resulting error rather than
// silently skipping.
func MakeDevice(path string, charDevice bool, major, minor uint32, perm uint16) error {
	mode := uint32(perm) | unix.S_IFBLK
	if charDevice {
		mode = uint32(perm) | unix.S_IFCHR
	}
	dev := unix.Mkdev(major, minor)
	if err := unix.Mknod(path, mode, int(dev)); err != nil {
		return xerrors.Errorf("fsmeta: mknod %s: %w", path, err)
	}
	return os.Chmod(path, os.FileMode(perm))
}

// MakeHardLink creates a hard link at path pointing at the already
// materialized target, as required by restore Phase C.
func MakeHardLink(target, path string) error {
	if err := os.Link(target, path); err != nil {
		return xerrors.Errorf("fsmeta: link %s -> %s: %w", path, target, err)
	}
	return nil
}

// MakeSymlink creates a symbolic link at path pointing at target
// verbatim, as required by restore Phase D. Permissions on a symlink
// itself are not meaningful on Linux and are not applied.
func MakeSymlink(target, path string) error {
	if err := os.Symlink(target, path); err != nil {
		return xerrors.Errorf("fsmeta: symlink %s -> %s: %w", path, target, err)
	}
	return nil
}
