package domain

import "time"

// Document mirrors the persisted representation in the documents table.
// InternalFilename is the uuid-based name the bytes live under on disk and is
// unique across all time; OriginalName is what the uploader called the file.
type Document struct {
	ID               string
	InternalFilename string
	OriginalName     string
	MimeType         string
	SizeBytes        int64
	DirectoryPath    string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// IsDeleted reports whether the document has been soft-deleted.
func (d Document) IsDeleted() bool {
	return d.DeletedAt != nil
}
