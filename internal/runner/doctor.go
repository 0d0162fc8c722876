package runner

import (
	"github.com/teamcutter/imgrip/internal/domain"
)

// Tool is one external executable and the families that need it.
type Tool struct {
	Name     string
	Command  string
	Families []domain.Family
	Optional bool
}

type ToolStatus struct {
	Tool
	Path string
	Err  error
}

func (s ToolStatus) Available() bool {
	return s.Err == nil
}

// Check looks up every tool on PATH. It never fails as a whole; each status
// carries its own error.
func Check(r Runner, tools []Tool) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(tools))
	for _, t := range tools {
		path, err := r.LookPath(t.Command)
		statuses = append(statuses, ToolStatus{Tool: t, Path: path, Err: err})
	}
	return statuses
}

// Degraded returns the families that lose their extractor because a
// required tool is missing.
func Degraded(statuses []ToolStatus) []domain.Family {
	seen := make(map[domain.Family]bool)
	var out []domain.Family
	for _, s := range statuses {
		if s.Available() || s.Optional {
			continue
		}
		for _, f := range s.Families {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
