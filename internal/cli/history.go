package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/state"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int
	var asJSON, clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded extraction runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			s, err := state.NewSQLite(cfg.StateFile)
			if err != nil {
				return err
			}
			defer s.Close()

			if clearAll {
				n, err := s.Clear()
				if err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Printf("%s History cleared (%d runs removed)\n", green("✓"), n)
				return nil
			}

			if asJSON {
				return s.ExportJSON(os.Stdout, limit)
			}

			runs, err := s.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("\n%s No runs recorded\n", dim("○"))
				return nil
			}

			fmt.Printf("Recent runs %s:\n\n", dim(fmt.Sprintf("(%s)", s.Path())))
			for _, run := range runs {
				fmt.Println(formatRun(run))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all recorded runs")
	return cmd
}

func formatRun(run domain.Run) string {
	glyph := green("✓")
	switch {
	case run.Error != "":
		glyph = red("✗")
	case run.Succeeded < run.Total:
		glyph = yellow("!")
	}

	line := fmt.Sprintf(" %s %s %s %d/%d  %s",
		glyph, bold(run.Source), dim(fmt.Sprintf("(%s)", run.Family)),
		run.Succeeded, run.Total, dim(humanize.Time(run.StartedAt)))
	if run.Error != "" {
		line += fmt.Sprintf("\n   %s %s", dim("↳"), run.Error)
	}
	return line
}
