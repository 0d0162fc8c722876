package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner/runnertest"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

func TestPDF_NoImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "text.pdf")
	if err := os.WriteFile(src, buildTextPDF("no pictures here"), 0644); err != nil {
		t.Fatal(err)
	}
	job := domain.Job{SourcePath: src, DisplayName: "text.pdf", OutputDir: filepath.Join(dir, "out", "text")}

	results, err := NewPDF(scheduler.New(scheduler.IOBoundCap)).Extract(context.Background(), job)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestPDF_EmbeddedJPEG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.pdf")
	if err := os.WriteFile(src, buildJPEGPDF(t), 0644); err != nil {
		t.Fatal(err)
	}
	job := domain.Job{SourcePath: src, DisplayName: "photo.pdf", OutputDir: filepath.Join(dir, "out", "photo")}

	results, err := NewPDF(scheduler.New(scheduler.IOBoundCap)).Extract(context.Background(), job)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) == 0 {
		t.Skip("pdfcpu did not report the image for this minimal document")
	}
	for _, r := range results {
		if !r.OK() {
			t.Fatalf("unit %s failed: %v", r.UnitID, r.Err)
		}
		if !strings.HasPrefix(filepath.Base(r.Path), "page1_img") {
			t.Fatalf("unexpected name %s", r.Path)
		}
		if _, err := os.Stat(r.Path); err != nil {
			t.Fatalf("missing output: %v", err)
		}
	}
}

func TestPDF_Corrupt(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4\nnot really"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewPDF(scheduler.New(scheduler.IOBoundCap)).Extract(context.Background(), domain.Job{SourcePath: src, OutputDir: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestPDFTool(t *testing.T) {
	fake := runnertest.New().Handle("pdfimages", func(_ context.Context, args []string) ([]byte, error) {
		prefix := args[len(args)-1]
		for i, ext := range []string{"jpg", "png"} {
			if err := os.WriteFile(fmt.Sprintf("%s-%03d.%s", prefix, i, ext), []byte("x"), 0644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	dir := t.TempDir()
	job := domain.Job{SourcePath: filepath.Join(dir, "a.pdf"), OutputDir: filepath.Join(dir, "out")}
	results, err := NewPDFTool(fake, "pdfimages").Extract(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if calls := fake.Calls(); len(calls) != 1 || !strings.HasPrefix(calls[0], "pdfimages -all ") {
		t.Fatalf("calls = %v", calls)
	}
}

func TestPDFTool_Failure(t *testing.T) {
	fake := runnertest.New().Handle("pdfimages", func(context.Context, []string) ([]byte, error) {
		return nil, runnertest.Failed("pdfimages", 1)
	})
	dir := t.TempDir()
	_, err := NewPDFTool(fake, "pdfimages").Extract(context.Background(), domain.Job{SourcePath: "a.pdf", OutputDir: dir})
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- PDF builders ---

type pdfWriter struct {
	b       bytes.Buffer
	offsets []int
}

func (w *pdfWriter) object(body string) {
	w.offsets = append(w.offsets, w.b.Len())
	fmt.Fprintf(&w.b, "%d 0 obj\n%s\nendobj\n", len(w.offsets), body)
}

func (w *pdfWriter) stream(dict string, data []byte) {
	w.offsets = append(w.offsets, w.b.Len())
	fmt.Fprintf(&w.b, "%d 0 obj\n<< %s /Length %d >>\nstream\n", len(w.offsets), dict, len(data))
	w.b.Write(data)
	w.b.WriteString("\nendstream\nendobj\n")
}

func (w *pdfWriter) finish() []byte {
	xref := w.b.Len()
	fmt.Fprintf(&w.b, "xref\n0 %d\n0000000000 65535 f \n", len(w.offsets)+1)
	for _, off := range w.offsets {
		fmt.Fprintf(&w.b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(w.offsets)+1, xref)
	return w.b.Bytes()
}

func newPDFWriter() *pdfWriter {
	w := &pdfWriter{}
	w.b.WriteString("%PDF-1.4\n")
	return w
}

func buildTextPDF(text string) []byte {
	w := newPDFWriter()
	content := "BT\n/F1 12 Tf\n72 720 Td\n(" + text + ") Tj\nET"
	w.object("<< /Type /Catalog /Pages 2 0 R >>")
	w.object("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")
	w.stream("", []byte(content))
	w.object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	return w.finish()
}

func buildJPEGPDF(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, 7-x, color.RGBA{B: 255, A: 255})
	}
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, nil); err != nil {
		t.Fatal(err)
	}

	w := newPDFWriter()
	w.object("<< /Type /Catalog /Pages 2 0 R >>")
	w.object("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /XObject << /Im1 4 0 R >> >> /Contents 5 0 R >>")
	w.stream("/Type /XObject /Subtype /Image /Width 8 /Height 8 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode", jpg.Bytes())
	w.stream("", []byte("q 100 0 0 100 72 692 cm /Im1 Do Q"))
	return w.finish()
}

func TestPDFTool_RerunCountsOnlyNewImages(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(out, fmt.Sprintf("img-%03d.png", i)), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(out, "notes.txt"), []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	fake := runnertest.New().Handle("pdfimages", func(_ context.Context, args []string) ([]byte, error) {
		return nil, os.WriteFile(args[len(args)-1]+"-000.jpg", []byte("new"), 0644)
	})

	results, err := NewPDFTool(fake, "pdfimages").Extract(context.Background(), domain.Job{SourcePath: filepath.Join(dir, "a.pdf"), OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if tally := domain.TallyOf(results); tally.String() != "1/1" {
		t.Fatalf("tally = %s, want 1/1", tally)
	}
	got := listDir(t, out)
	if strings.Join(got, ",") != "img-000.jpg,notes.txt" {
		t.Fatalf("output = %v", got)
	}
}
