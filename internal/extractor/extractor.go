package extractor

import (
	"github.com/teamcutter/imgrip/internal/config"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

// Registry is the total strategy table from family to extractor. Unknown
// has no entry.
type Registry struct {
	strategies map[domain.Family]domain.Extractor
}

func New(cfg *config.Config, r runner.Runner) *Registry {
	ioPool := scheduler.New(cfg.IOWorkers)
	procPool := scheduler.New(cfg.ProcessWorkers)
	archive := NewArchive()

	var pdf domain.Extractor
	switch cfg.PDFMode {
	case config.PDFModeTool:
		pdf = NewPDFTool(r, cfg.Tools.PDFImages)
	default:
		pdf = NewPDF(ioPool)
	}

	return NewRegistry(map[domain.Family]domain.Extractor{
		domain.FamilyPDF:        pdf,
		domain.FamilyDjVu:       NewDjVu(r, procPool, cfg.Tools.Djvused, cfg.Tools.DDjvu, cfg.DjVuFormat),
		domain.FamilyDocx:       archive,
		domain.FamilyEPUB:       archive,
		domain.FamilyZipGeneric: archive,
		domain.FamilyDocLegacy:  NewLegacy(r, archive, cfg.Tools.Soffice, cfg.TempDir),
	})
}

func NewRegistry(strategies map[domain.Family]domain.Extractor) *Registry {
	return &Registry{strategies: strategies}
}

// For returns the extractor for f; ok is false for unsupported families.
func (reg *Registry) For(f domain.Family) (domain.Extractor, bool) {
	if f == domain.FamilyUnknown {
		return nil, false
	}
	e, ok := reg.strategies[f]
	return e, ok
}

// RequiredTools lists the external executables the configured strategies
// may call.
func RequiredTools(cfg *config.Config) []runner.Tool {
	tools := []runner.Tool{
		{Name: "MIME sniffer", Command: cfg.Tools.File, Optional: true},
		{Name: "DjVu page count", Command: cfg.Tools.Djvused, Families: []domain.Family{domain.FamilyDjVu}},
		{Name: "DjVu renderer", Command: cfg.Tools.DDjvu, Families: []domain.Family{domain.FamilyDjVu}},
		{Name: "Office converter", Command: cfg.Tools.Soffice, Families: []domain.Family{domain.FamilyDocLegacy}},
	}
	if cfg.PDFMode == config.PDFModeTool {
		tools = append(tools, runner.Tool{Name: "PDF image extractor", Command: cfg.Tools.PDFImages, Families: []domain.Family{domain.FamilyPDF}})
	}
	return tools
}
