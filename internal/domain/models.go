package domain

import (
	"fmt"
	"time"
)

type Family string

const (
	FamilyPDF        Family = "pdf"
	FamilyDjVu       Family = "djvu"
	FamilyDocx       Family = "docx"
	FamilyEPUB       Family = "epub"
	FamilyZipGeneric Family = "zip_generic"
	FamilyDocLegacy  Family = "doc_legacy"
	FamilyUnknown    Family = "unknown"
)

// Families lists every classification the sniffer can produce, unknown last.
func Families() []Family {
	return []Family{
		FamilyPDF,
		FamilyDjVu,
		FamilyDocx,
		FamilyEPUB,
		FamilyZipGeneric,
		FamilyDocLegacy,
		FamilyUnknown,
	}
}

// Job is one classified file on its way to an extractor.
type Job struct {
	ID          string
	SourcePath  string
	DisplayName string
	Family      Family
	OutputDir   string
}

// WorkUnit is either a page to render (Page > 0) or an image blob to save.
type WorkUnit struct {
	ID     string
	Page   int
	Name   string
	Data   []byte
	Format string
}

func PageUnit(page int) WorkUnit {
	return WorkUnit{ID: fmt.Sprintf("page %d", page), Page: page}
}

func ImageUnit(name string, data []byte, format string) WorkUnit {
	return WorkUnit{ID: name, Name: name, Data: data, Format: format}
}

type UnitResult struct {
	UnitID string
	Path   string
	Err    error
}

func Success(unitID, path string) UnitResult {
	return UnitResult{UnitID: unitID, Path: path}
}

func Failure(unitID string, err error) UnitResult {
	return UnitResult{UnitID: unitID, Err: err}
}

func (r UnitResult) OK() bool {
	return r.Err == nil
}

type Tally struct {
	Succeeded int
	Total     int
}

func TallyOf(results []UnitResult) Tally {
	t := Tally{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			t.Succeeded++
		}
	}
	return t
}

func (t Tally) String() string {
	return fmt.Sprintf("%d/%d", t.Succeeded, t.Total)
}

func (t Tally) Partial() bool {
	return t.Succeeded < t.Total
}

// Report is the outcome of routing one input path.
type Report struct {
	Job         Job
	Results     []UnitResult
	Tally       Tally
	Unsupported bool
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Run is a persisted Report.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Family     Family    `json:"family"`
	OutputDir  string    `json:"output_dir"`
	Succeeded  int       `json:"succeeded"`
	Total      int       `json:"total"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
