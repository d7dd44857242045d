package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/port"
)

// LibreOfficeConverter shells out to a headless soffice process to produce
// PDFs. Each invocation gets a throwaway user profile directory so parallel
// conversions do not fight over the profile lock.
type LibreOfficeConverter struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewLibreOfficeConverter(binary string, timeout time.Duration, log *zap.Logger) *LibreOfficeConverter {
	if binary == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &LibreOfficeConverter{binary: binary, timeout: timeout, logger: log}
}

// ConvertToPDF converts inputPath into a PDF inside outDir and returns the
// resulting file path.
func (c *LibreOfficeConverter) ConvertToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	profileDir := filepath.Join(os.TempDir(), "lo_profile_"+uuid.NewString())
	if err := os.MkdirAll(profileDir, 0o700); err != nil {
		return "", fmt.Errorf("convert: create profile dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(profileDir); err != nil {
			c.logger.Warn("remove libreoffice profile", zap.String("dir", profileDir), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless",
		"--norestore",
		"-env:UserInstallation=file://"+profileDir,
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	)

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("convert: timed out after %s", c.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("convert: soffice failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	base := filepath.Base(inputPath)
	pdfName := strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	pdfPath := filepath.Join(outDir, pdfName)

	// soffice reports success even when it silently skips the document.
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("convert: expected output missing: %s", pdfPath)
	}

	return pdfPath, nil
}

var _ port.DocumentConverter = (*LibreOfficeConverter)(nil)
