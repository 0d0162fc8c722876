// Package scheduler runs independent work units on a bounded worker pool.
// A unit's failure never stops its siblings; every unit yields exactly one
// result.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	// IOBoundCap suits pure save/copy work.
	IOBoundCap = 32
	// ProcessBoundCap suits units that spawn a subprocess each.
	ProcessBoundCap = 16
)

type WorkerFunc func(ctx context.Context, unit domain.WorkUnit) (string, error)

type Scheduler struct {
	hardCap int
	hint    int
}

func New(hardCap int) *Scheduler {
	return &Scheduler{hardCap: hardCap, hint: runtime.NumCPU()}
}

// Parallelism is min(hardCap, available CPUs, n), never below 1.
func (s *Scheduler) Parallelism(n int) int {
	return max(1, min(s.hardCap, s.hint, n))
}

// RunAll executes fn once per unit and returns one result per unit. Result
// order follows the input slice; completion order is reported to the
// Progress in ctx as units finish.
func (s *Scheduler) RunAll(ctx context.Context, label string, units []domain.WorkUnit, fn WorkerFunc) []domain.UnitResult {
	results := make([]domain.UnitResult, len(units))
	if len(units) == 0 {
		return results
	}

	progress := domain.ProgressFrom(ctx)
	progress.Begin(label, len(units))
	defer progress.End()

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.Parallelism(len(units)))

	for i, unit := range units {
		g.Go(func() error {
			res := runOne(ctx, unit, fn)
			results[i] = res

			mu.Lock()
			progress.Step(res)
			mu.Unlock()

			ev := log.Debug()
			if !res.OK() {
				ev = log.Warn().Err(res.Err)
			}
			ev.Str("batch", label).Str("unit", res.UnitID).Str("path", res.Path).Msg("unit finished")
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runOne(ctx context.Context, unit domain.WorkUnit, fn WorkerFunc) (res domain.UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Failure(unit.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.Failure(unit.ID, err)
	}

	path, err := fn(ctx, unit)
	if err != nil {
		return domain.Failure(unit.ID, err)
	}
	return domain.Success(unit.ID, path)
}

// Failures joins the errors of every failed unit, or returns nil.
func Failures(results []domain.UnitResult) error {
	var merr *multierror.Error
	for _, r := range results {
		if !r.OK() {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.UnitID, r.Err))
		}
	}
	return merr.ErrorOrNil()
}
