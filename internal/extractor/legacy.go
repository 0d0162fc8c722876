package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner"
	"github.com/teamcutter/imgrip/internal/sniff"
)

// LegacyExtractor converts OLE2 Office files to their ZIP based successor
// in a private temp dir, then hands the result to the archive extractor.
// A failed conversion extracts nothing.
type LegacyExtractor struct {
	runner  runner.Runner
	archive *ArchiveExtractor
	soffice string
	tempDir string
}

func NewLegacy(r runner.Runner, archive *ArchiveExtractor, soffice, tempDir string) *LegacyExtractor {
	return &LegacyExtractor{
		runner:  r,
		archive: archive,
		soffice: soffice,
		tempDir: tempDir,
	}
}

func (le *LegacyExtractor) Extract(ctx context.Context, job domain.Job) ([]domain.UnitResult, error) {
	tmp, err := os.MkdirTemp(le.tempDir, "imgrip-doc-*")
	if err != nil {
		return nil, fmt.Errorf("legacy: failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			log.Warn().Err(err).Str("dir", tmp).Msg("failed to remove conversion dir")
		}
	}()

	profile, err := profileURL(filepath.Join(tmp, "profile"))
	if err != nil {
		return nil, err
	}

	target := sniff.LegacyTarget(job.SourcePath)
	log.Debug().Str("file", job.DisplayName).Str("target", target).Msg("converting legacy document")

	_, _, err = le.runner.Run(ctx, le.soffice,
		"--headless",
		"-env:UserInstallation="+profile,
		"--convert-to", target,
		"--outdir", tmp,
		job.SourcePath,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
	}

	converted, err := findConverted(tmp, "."+target)
	if err != nil {
		return nil, err
	}

	return le.archive.ExtractFile(ctx, converted, job.OutputDir)
}

// profileURL turns dir into the file:// URL soffice expects for its user
// profile. Relative dirs would otherwise be read as a URL host.
func profileURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p, nil
}

func findConverted(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no %s produced", domain.ErrConversion, ext)
}
