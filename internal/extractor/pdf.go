package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

// PDFExtractor enumerates embedded images with pdfcpu and saves them in
// their native encoding as page<P>_img<I>.<ext>.
type PDFExtractor struct {
	pool *scheduler.Scheduler
}

func NewPDF(pool *scheduler.Scheduler) *PDFExtractor {
	return &PDFExtractor{pool: pool}
}

func (pe *PDFExtractor) Extract(ctx context.Context, job domain.Job) ([]domain.UnitResult, error) {
	units, err := collectImages(job.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	if len(units) == 0 {
		log.Info().Str("file", job.DisplayName).Msg("no embedded images")
		return nil, nil
	}

	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, err
	}

	return pe.pool.RunAll(ctx, job.DisplayName, units, func(_ context.Context, u domain.WorkUnit) (string, error) {
		target := filepath.Join(job.OutputDir, u.Name)
		if err := os.WriteFile(target, u.Data, 0644); err != nil {
			return "", err
		}
		return target, nil
	}), nil
}

func collectImages(path string) ([]domain.WorkUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var units []domain.WorkUnit
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			log.Warn().Err(err).Int("page", pageNr).Msg("page images unreadable")
			continue
		}

		objNrs := make([]int, 0, len(images))
		for objNr := range images {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		idx := 0
		for _, objNr := range objNrs {
			img := images[objNr]
			if img.Reader == nil {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil {
				log.Warn().Err(err).Int("page", pageNr).Int("obj", objNr).Msg("image stream unreadable")
				continue
			}

			ext := img.FileType
			if ext == "" {
				ext = "bin"
			}
			idx++
			name := fmt.Sprintf("page%d_img%d.%s", pageNr, idx, ext)
			units = append(units, domain.ImageUnit(name, data, ext))
		}
	}

	return units, nil
}
