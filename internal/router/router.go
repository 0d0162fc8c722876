package router

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/unwrap"
)

// Strategies looks up the extractor for a family.
type Strategies interface {
	For(f domain.Family) (domain.Extractor, bool)
}

// Router turns input paths into jobs: it validates the path, strips any
// compression wrapper, classifies the content and dispatches to the
// matching extractor. Each file gets its own directory under outputRoot.
type Router struct {
	classifier domain.Classifier
	strategies Strategies
	history    domain.History
	outputRoot string
	tempDir    string
}

type Options struct {
	OutputRoot string
	TempDir    string
	// History is optional.
	History domain.History
}

func New(classifier domain.Classifier, strategies Strategies, opts Options) *Router {
	return &Router{
		classifier: classifier,
		strategies: strategies,
		history:    opts.History,
		outputRoot: opts.OutputRoot,
		tempDir:    opts.TempDir,
	}
}

// Process routes paths one after another. A cancelled context stops the
// batch before the next file. Jobs in one batch never share an output dir:
// a second "book" becomes "book-2", then "book-3".
func (rt *Router) Process(ctx context.Context, paths []string) []domain.Report {
	reports := make([]domain.Report, 0, len(paths))
	claimed := make(map[string]bool)
	for _, p := range paths {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(paths)-len(reports)).Msg("batch cancelled")
			break
		}
		reports = append(reports, rt.route(ctx, p, claimed))
	}
	return reports
}

// Route never fails as a whole; everything that went wrong is in the
// returned report.
func (rt *Router) Route(ctx context.Context, path string) domain.Report {
	return rt.route(ctx, path, nil)
}

func (rt *Router) route(ctx context.Context, path string, claimed map[string]bool) domain.Report {
	report := domain.Report{
		Job: domain.Job{
			SourcePath:  path,
			DisplayName: filepath.Base(path),
		},
		StartedAt: time.Now(),
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		report.Err = fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		report.FinishedAt = time.Now()
		log.Warn().Str("file", path).Msg("skipping: not a regular file")
		return report
	}

	report.Job.ID = uuid.New().String()
	report.Job.OutputDir = filepath.Join(rt.outputRoot, claimDir(domain.BaseName(path), claimed))

	rt.dispatch(ctx, &report)

	report.FinishedAt = time.Now()
	rt.record(report)
	return report
}

// claimDir returns base, or base-N for the first N >= 2 not yet taken, and
// marks it taken. Names compare case-insensitively so they stay distinct on
// case-folding filesystems. A nil claimed map disables the check.
func claimDir(base string, claimed map[string]bool) string {
	if claimed == nil {
		return base
	}
	name := base
	for n := 2; claimed[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	claimed[strings.ToLower(name)] = true
	return name
}

func (rt *Router) dispatch(ctx context.Context, report *domain.Report) {
	job := report.Job

	inner, err := unwrap.Open(job.SourcePath, rt.tempDir)
	if err != nil {
		report.Err = err
		log.Error().Err(err).Str("file", job.DisplayName).Msg("failed to unwrap")
		return
	}
	defer inner.Cleanup()

	job.Family = rt.classifier.Classify(ctx, inner.Path)
	report.Job.Family = job.Family

	ext, ok := rt.strategies.For(job.Family)
	if !ok {
		report.Unsupported = true
		report.Err = fmt.Errorf("%s: %w", job.DisplayName, domain.ErrUnsupported)
		log.Warn().Str("file", job.DisplayName).Str("family", string(job.Family)).Msg("unsupported document type")
		return
	}

	log.Info().
		Str("file", job.DisplayName).
		Str("family", string(job.Family)).
		Str("output", job.OutputDir).
		Msg("extracting")

	job.SourcePath = inner.Path
	start := time.Now()
	results, err := ext.Extract(ctx, job)
	report.Results = results
	report.Tally = domain.TallyOf(results)
	report.Err = err

	evt := log.Info()
	if err != nil {
		evt = log.Error().Err(err)
	} else if report.Tally.Partial() {
		evt = log.Warn()
	}
	evt.Str("file", job.DisplayName).
		Int("succeeded", report.Tally.Succeeded).
		Int("total", report.Tally.Total).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("done")
}

func (rt *Router) record(report domain.Report) {
	if rt.history == nil {
		return
	}
	if err := rt.history.Record(report); err != nil {
		log.Warn().Err(err).Str("file", report.Job.DisplayName).Msg("failed to record run")
	}
}

// Failed reports whether the file produced nothing because of an error, as
// opposed to a partial tally, an unsupported type or a skipped path.
func Failed(r domain.Report) bool {
	return r.Err != nil && !r.Unsupported && !Skipped(r)
}

// Skipped reports whether the path was never routed because it is missing
// or not a regular file.
func Skipped(r domain.Report) bool {
	return errors.Is(r.Err, domain.ErrNotFound)
}
