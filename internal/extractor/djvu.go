package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/config"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

// DjVuExtractor renders every page to its own raster file, one ddjvu
// process per page.
type DjVuExtractor struct {
	runner  runner.Runner
	pool    *scheduler.Scheduler
	djvused string
	ddjvu   string
	format  string
}

func NewDjVu(r runner.Runner, pool *scheduler.Scheduler, djvused, ddjvu, format string) *DjVuExtractor {
	return &DjVuExtractor{
		runner:  r,
		pool:    pool,
		djvused: djvused,
		ddjvu:   ddjvu,
		format:  format,
	}
}

func (de *DjVuExtractor) Extract(ctx context.Context, job domain.Job) ([]domain.UnitResult, error) {
	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, err
	}

	pages, err := de.PageCount(ctx, job.SourcePath)
	if err != nil {
		return nil, err
	}

	units := make([]domain.WorkUnit, pages)
	for i := range units {
		units[i] = domain.PageUnit(i + 1)
	}

	log.Info().Str("file", job.DisplayName).Int("pages", pages).Msg("rendering pages")
	results := de.pool.RunAll(ctx, job.DisplayName, units, func(ctx context.Context, u domain.WorkUnit) (string, error) {
		return de.renderPage(ctx, job.SourcePath, job.OutputDir, u.Page)
	})

	tally := domain.TallyOf(results)
	log.Info().Str("file", job.DisplayName).Int("succeeded", tally.Succeeded).Int("total", tally.Total).Msg("pages rendered")
	return results, nil
}

// PageCount asks djvused for the number of pages.
func (de *DjVuExtractor) PageCount(ctx context.Context, src string) (int, error) {
	out, _, err := de.runner.Run(ctx, de.djvused, "-e", "n", src)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPageCount, err)
	}
	raw := strings.TrimSpace(string(out))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: unexpected output %q", domain.ErrPageCount, raw)
	}
	return n, nil
}

func (de *DjVuExtractor) renderPage(ctx context.Context, src, outDir string, page int) (string, error) {
	tif := filepath.Join(outDir, fmt.Sprintf("page_%04d.tif", page))
	png := strings.TrimSuffix(tif, ".tif") + ".png"

	// A leftover page from an earlier run must not pass for fresh output.
	for _, stale := range []string{tif, png} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return "", err
		}
	}

	if _, _, err := de.runner.Run(ctx, de.ddjvu, "-format=tiff", fmt.Sprintf("-page=%d", page), src, tif); err != nil {
		os.Remove(tif)
		return "", err
	}
	if _, err := os.Stat(tif); err != nil {
		return "", fmt.Errorf("%s produced no output for page %d: %w", de.ddjvu, page, domain.ErrToolFailed)
	}

	if de.format != config.DjVuFormatPNG {
		return tif, nil
	}

	if err := ConvertTIFFToPNG(tif, png); err != nil {
		os.Remove(tif)
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	if err := os.Remove(tif); err != nil {
		log.Warn().Err(err).Str("path", tif).Msg("failed to remove intermediate tiff")
	}
	return png, nil
}
