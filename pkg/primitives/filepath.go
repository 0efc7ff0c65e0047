package primitives

import (
	"hash/fnv"
	"os"
	"path/filepath"
)

// Filepath is a type-safe wrapper around the paths of database files.
type Filepath string

// Canonical returns the absolute, lexically cleaned form of the path. Two
// Filepaths naming the same file canonicalize to the same value, which is
// what makes Hash a stable table identity.
func (f Filepath) Canonical() Filepath {
	abs, err := filepath.Abs(string(f))
	if err != nil {
		return Filepath(filepath.Clean(string(f)))
	}
	return Filepath(abs)
}

// Hash derives the table identity from the canonical path using FNV-1a.
// Repeated calls, and calls from separate processes pointed at the same
// file, return the same ID.
func (f Filepath) Hash() TableID {
	h := fnv.New64a()
	h.Write([]byte(f.Canonical()))
	return TableID(h.Sum64())
}

func (f Filepath) String() string {
	return string(f)
}

func (f Filepath) IsEmpty() bool {
	return string(f) == ""
}

func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

// Join appends path elements and returns a new Filepath.
func (f Filepath) Join(elem ...string) Filepath {
	parts := append([]string{string(f)}, elem...)
	return Filepath(filepath.Join(parts...))
}

// Stat returns filesystem metadata for the file.
func (f Filepath) Stat() (os.FileInfo, error) {
	return os.Stat(string(f))
}
