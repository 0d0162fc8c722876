package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner"
)

// PDFToolExtractor shells out to pdfimages once per file. Its output is
// img-NNN.<ext> in the job directory.
type PDFToolExtractor struct {
	runner  runner.Runner
	command string
}

func NewPDFTool(r runner.Runner, command string) *PDFToolExtractor {
	return &PDFToolExtractor{runner: r, command: command}
}

func (pt *PDFToolExtractor) Extract(ctx context.Context, job domain.Job) ([]domain.UnitResult, error) {
	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, err
	}

	if err := removeToolOutput(job.OutputDir); err != nil {
		return nil, err
	}

	prefix := filepath.Join(job.OutputDir, "img")
	if _, _, err := pt.runner.Run(ctx, pt.command, "-all", job.SourcePath, prefix); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	entries, err := os.ReadDir(job.OutputDir)
	if err != nil {
		return nil, err
	}

	var results []domain.UnitResult
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "img-") {
			continue
		}
		results = append(results, domain.Success(e.Name(), filepath.Join(job.OutputDir, e.Name())))
	}
	return results, nil
}

// removeToolOutput deletes img-* files left by an earlier run so they are
// not counted again.
func removeToolOutput(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "img-*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
