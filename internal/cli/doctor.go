package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teamcutter/imgrip/internal/config"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/extractor"
	"github.com/teamcutter/imgrip/internal/runner"
)

func newDoctorCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			statuses := runner.Check(runner.New(cfg.ToolTimeout()), extractor.RequiredTools(cfg))

			fmt.Printf("%s\n\n", bold("External tools:"))
			for _, s := range statuses {
				fmt.Println(formatToolStatus(s))
			}
			if cfg.PDFMode == config.PDFModeLibrary {
				fmt.Printf("%s %s %s\n", green("✓"), bold("pdf"), dim("(built-in)"))
			}

			degraded := runner.Degraded(statuses)
			fmt.Println()
			if len(degraded) == 0 {
				fmt.Printf("%s All document families available\n", green("✓"))
				return nil
			}
			fmt.Printf("%s Unavailable: %s\n", yellow("!"), familyList(degraded))
			return nil
		},
	}
}

func formatToolStatus(s runner.ToolStatus) string {
	if s.Available() {
		return fmt.Sprintf("%s %s %s", green("✓"), bold(s.Command), dim(s.Path))
	}
	if s.Optional {
		return fmt.Sprintf("%s %s not found %s", yellow("!"), bold(s.Command),
			dim(fmt.Sprintf("(%s, falling back to byte signatures)", s.Name)))
	}
	return fmt.Sprintf("%s %s not found %s", red("✗"), bold(s.Command),
		dim(fmt.Sprintf("(%s for %s)", s.Name, familyList(s.Families))))
}

func familyList(families []domain.Family) string {
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
