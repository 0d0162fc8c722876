package extractor

import (
	"testing"

	"github.com/teamcutter/imgrip/internal/config"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner/runnertest"
)

func TestRegistry_CoversEveryFamily(t *testing.T) {
	reg := New(config.DefaultConfig(), runnertest.New())

	for _, f := range domain.Families() {
		_, ok := reg.For(f)
		if f == domain.FamilyUnknown {
			if ok {
				t.Errorf("unknown must have no extractor")
			}
			continue
		}
		if !ok {
			t.Errorf("no extractor for %s", f)
		}
	}
}

func TestRegistry_PDFMode(t *testing.T) {
	cfg := config.DefaultConfig()
	e, _ := New(cfg, runnertest.New()).For(domain.FamilyPDF)
	if _, ok := e.(*PDFExtractor); !ok {
		t.Fatalf("library mode: got %T", e)
	}

	cfg.PDFMode = config.PDFModeTool
	e, _ = New(cfg, runnertest.New()).For(domain.FamilyPDF)
	if _, ok := e.(*PDFToolExtractor); !ok {
		t.Fatalf("tool mode: got %T", e)
	}
}

func TestRequiredTools(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, tool := range RequiredTools(cfg) {
		if tool.Command == cfg.Tools.PDFImages {
			t.Fatal("pdfimages is not needed in library mode")
		}
	}

	cfg.PDFMode = config.PDFModeTool
	found := false
	for _, tool := range RequiredTools(cfg) {
		found = found || tool.Command == cfg.Tools.PDFImages
	}
	if !found {
		t.Fatal("pdfimages missing in tool mode")
	}
}
