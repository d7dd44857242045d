package port

import "io"

// ArtifactStorage is the file-storage collaborator. Implementations reject
// writes to an existing file unless override is set and must remove partial
// files when the source turns out to be empty.
type ArtifactStorage interface {
	Save(subdir, filename string, r io.Reader, override bool) (int64, error)
	Rename(subdir, oldName, newName string) error
	Remove(subdir, filename string) error
	Open(subdir, filename string) (io.ReadCloser, error)
	Path(subdir, filename string) string
	Basename(filename string) string
}
