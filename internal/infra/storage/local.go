package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arklim/workforce-api/internal/core/port"
)

// ErrFileExists is returned by Save when the target already exists and
// override is false.
var ErrFileExists = errors.New("storage: file already exists")

// ErrEmptyFile is returned by Save when the source produced zero bytes.
// The partial target file is removed before returning.
var ErrEmptyFile = errors.New("storage: refusing to keep empty file")

// LocalStore keeps artifacts on the local filesystem under a base directory,
// one subdirectory per artifact family.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates the base directory if missing.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Save streams r into subdir/filename and returns the number of bytes
// written. An existing target is only replaced when override is set. A
// zero-byte source is treated as a failed upload: the partial file is
// removed and ErrEmptyFile returned.
func (s *LocalStore) Save(subdir, filename string, r io.Reader, override bool) (int64, error) {
	targetDir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return 0, fmt.Errorf("create storage subdir: %w", err)
	}

	target := filepath.Join(targetDir, s.Basename(filename))
	if !override {
		if _, err := os.Stat(target); err == nil {
			return 0, ErrFileExists
		} else if !os.IsNotExist(err) {
			return 0, fmt.Errorf("stat target: %w", err)
		}
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("write file: %w", err)
	}

	if written == 0 {
		_ = os.Remove(target)
		return 0, ErrEmptyFile
	}

	return written, nil
}

// Rename moves an artifact within its subdirectory.
func (s *LocalStore) Rename(subdir, oldName, newName string) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.Rename(filepath.Join(dir, s.Basename(oldName)), filepath.Join(dir, s.Basename(newName))); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Remove deletes an artifact. Removing a missing file is not an error.
func (s *LocalStore) Remove(subdir, filename string) error {
	err := os.Remove(s.Path(subdir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Open returns a reader for the artifact.
func (s *LocalStore) Open(subdir, filename string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(subdir, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Path returns the absolute location of an artifact on disk.
func (s *LocalStore) Path(subdir, filename string) string {
	return filepath.Join(s.basePath, subdir, s.Basename(filename))
}

// Basename strips any directory components from a client-supplied name so a
// crafted filename cannot escape the storage directory.
func (s *LocalStore) Basename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "artifact"
	}
	return name
}

var _ port.ArtifactStorage = (*LocalStore)(nil)
