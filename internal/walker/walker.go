// Package walker enumerates a source tree in the deterministic order
// the packer depends on: breadth-first across directory levels, sorted
// lexicographically within each level, including hidden entries, never
// following symlinks (spec.md §4.4.1).
package walker

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/xerrors"
)

// Entry is one enumerated filesystem entry, relative to the walked
// root.
type Entry struct {
	// RelPath is the entry's path made lexically relative to the walk
	// root, using forward slashes.
	RelPath string
	// AbsPath is the entry's absolute filesystem path.
	AbsPath string
	IsDir   bool
}

// Exclude reports whether an entry (identified by its RelPath) should be
// dropped before any member is built for it.
type Exclude func(relPath string) bool

// Walk returns every entry under root, excluding root itself: only its
// contents are enumerated (spec.md §8.3 — an empty source directory
// therefore yields zero entries). Directories are visited
// breadth-first, and the entries of each directory are sorted by name
// (ReadDir already returns them in that order; they are sorted again
// explicitly here).
func Walk(root string, exclude Exclude) ([]Entry, error) {
	var entries []Entry
	queue := []string{""}

	for len(queue) > 0 {
		relDir := queue[0]
		queue = queue[1:]

		absDir := filepath.Join(root, relDir)
		dirEntries, err := os.ReadDir(absDir)
		if err != nil {
			return nil, xerrors.Errorf("walker: read dir %s: %w", absDir, err)
		}
		sort.Slice(dirEntries, func(i, j int) bool {
			return dirEntries[i].Name() < dirEntries[j].Name()
		})

		for _, de := range dirEntries {
			rel := filepath.Join(relDir, de.Name())
			slashRel := filepath.ToSlash(rel)
			if exclude != nil && exclude(slashRel) {
				continue
			}

			isDir := de.Type()&os.ModeSymlink == 0 && de.IsDir()
			entries = append(entries, Entry{
				RelPath: slashRel,
				AbsPath: filepath.Join(root, rel),
				IsDir:   isDir,
			})
			if isDir {
				queue = append(queue, rel)
			}
		}
	}

	return entries, nil
}
