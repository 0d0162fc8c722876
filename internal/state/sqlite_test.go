package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/teamcutter/imgrip/internal/domain"
)

func openTemp(t *testing.T) *SQLiteState {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id string, started time.Time, succeeded, total int, err error) domain.Report {
	return domain.Report{
		Job: domain.Job{
			ID:         id,
			SourcePath: "/in/" + id + ".djvu",
			Family:     domain.FamilyDjVu,
			OutputDir:  "extracted_output/" + id,
		},
		Tally:      domain.Tally{Succeeded: succeeded, Total: total},
		Err:        err,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := s.Record(report(fmt.Sprintf("job%d", i), base.Add(time.Duration(i)*time.Minute), 2, 3, nil)); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "job2" || runs[1].ID != "job1" {
		t.Fatalf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Family != domain.FamilyDjVu || runs[0].Succeeded != 2 || runs[0].Total != 3 {
		t.Fatalf("unexpected run: %+v", runs[0])
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("started_at = %v", runs[0].StartedAt)
	}

	all, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 runs, got %d", len(all))
	}
}

func TestRecord_KeepsError(t *testing.T) {
	s := openTemp(t)
	err := fmt.Errorf("scan.djvu: %w", domain.ErrPageCount)
	if err := s.Record(report("bad", time.Now(), 0, 0, err)); err != nil {
		t.Fatal(err)
	}

	runs, _ := s.Recent(1)
	if len(runs) != 1 || runs[0].Error != err.Error() {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestRecord_RequiresID(t *testing.T) {
	s := openTemp(t)
	if err := s.Record(domain.Report{}); err == nil {
		t.Fatal("expected error for report without job id")
	}
}

func TestExportJSON(t *testing.T) {
	s := openTemp(t)

	var empty bytes.Buffer
	if err := s.ExportJSON(&empty, 10); err != nil {
		t.Fatal(err)
	}
	if bytes.TrimSpace(empty.Bytes())[0] != '[' {
		t.Fatalf("empty export should be an array: %s", empty.String())
	}

	if err := s.Record(report("a", time.Now(), 1, 1, nil)); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.ExportJSON(&buf, 10); err != nil {
		t.Fatal(err)
	}

	var runs []domain.Run
	if err := json.Unmarshal(buf.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "a" || runs[0].OutputDir != "extracted_output/a" {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestClear(t *testing.T) {
	s := openTemp(t)
	for _, id := range []string{"a", "b"} {
		if err := s.Record(report(id, time.Now(), 1, 1, nil)); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Clear()
	if err != nil || n != 2 {
		t.Fatalf("cleared %d, err %v", n, err)
	}
	runs, _ := s.Recent(0)
	if len(runs) != 0 {
		t.Fatalf("runs left: %d", len(runs))
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(report("kept", time.Now(), 1, 1, nil)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, err := s.Recent(0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, err = %v", runs, err)
	}
}
