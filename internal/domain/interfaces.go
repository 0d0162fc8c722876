package domain

import (
	"context"
)

type Extractor interface {
	Extract(ctx context.Context, job Job) ([]UnitResult, error)
}

type Classifier interface {
	Classify(ctx context.Context, path string) Family
}

type History interface {
	Record(report Report) error
	Recent(limit int) ([]Run, error)
	Close() error
}

// Progress receives unit completions for one batch. Implementations must be
// safe for concurrent Step calls.
type Progress interface {
	Begin(label string, total int)
	Step(result UnitResult)
	End()
}
