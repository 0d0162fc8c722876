package extractor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
)

var assetExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true,
	"tif": true, "tiff": true, "svg": true, "wmf": true, "emf": true,
}

// IsAsset reports whether an archive entry is an image worth extracting.
// Office and EPUB thumbnail previews are excluded.
func IsAsset(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !assetExts[ext] {
		return false
	}
	return !strings.Contains(strings.ToLower(name), "thumbnail")
}

// ArchiveExtractor copies image entries out of ZIP based containers into a
// flat directory. Names are <NNNN>.<ext> in central directory order, so a
// re-run overwrites instead of duplicating.
type ArchiveExtractor struct{}

func NewArchive() *ArchiveExtractor {
	return &ArchiveExtractor{}
}

func (ae *ArchiveExtractor) Extract(ctx context.Context, job domain.Job) ([]domain.UnitResult, error) {
	return ae.ExtractFile(ctx, job.SourcePath, job.OutputDir)
}

func (ae *ArchiveExtractor) ExtractFile(ctx context.Context, src, dst string) ([]domain.UnitResult, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, err
	}

	var results []domain.UnitResult
	idx := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !IsAsset(f.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		idx++
		target := filepath.Join(dst, fmt.Sprintf("%04d%s", idx, path.Ext(f.Name)))
		if err := copyEntry(f, target); err != nil {
			log.Warn().Err(err).Str("entry", f.Name).Msg("asset copy failed")
			results = append(results, domain.Failure(f.Name, err))
			continue
		}
		results = append(results, domain.Success(f.Name, target))
	}

	log.Debug().Str("file", src).Int("assets", len(results)).Msg("archive scanned")
	return results, nil
}

func copyEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
