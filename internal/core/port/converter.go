package port

import "context"

// DocumentConverter is the document-conversion collaborator (headless office
// suite). ConvertToPDF renders inputPath into outDir and returns the path of
// the produced PDF. Implementations must isolate concurrent invocations and
// bound wall-clock time via the context.
type DocumentConverter interface {
	ConvertToPDF(ctx context.Context, inputPath, outDir string) (string, error)
}
