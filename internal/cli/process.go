package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/router"
	"github.com/teamcutter/imgrip/internal/scheduler"
)

func newProcessCmd(opts *globalOptions) *cobra.Command {
	var output, pdfMode, djvuFormat string
	var noMIME bool

	cmd := &cobra.Command{
		Use:   "process <path>...",
		Short: "Extract embedded images from documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.OutputRoot = output
			}
			if flags.Changed("pdf-mode") {
				cfg.PDFMode = pdfMode
			}
			if flags.Changed("djvu-format") {
				cfg.DjVuFormat = djvuFormat
			}
			if noMIME {
				cfg.UseMIME = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.OutputRoot, 0755); err != nil {
				return fmt.Errorf("failed to create output root: %w", err)
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := domain.WithProgress(cmd.Context(), newBarProgress())
			reports := p.router.Process(ctx, args)

			for _, r := range reports {
				fmt.Println(formatReport(r))
			}

			sum := summarize(reports)
			fmt.Printf("\n%s %d file(s), %d image(s) extracted into %s\n",
				dim("○"), len(reports), sum.extracted, bold(cfg.OutputRoot))
			if left := len(args) - len(reports); left > 0 {
				fmt.Printf("%s %d file(s) not processed (interrupted)\n", yellow("!"), left)
			}
			if sum.skipped > 0 {
				fmt.Printf("%s %d file(s) not found\n", yellow("!"), sum.skipped)
			}
			if sum.partial > 0 {
				fmt.Printf("%s %d file(s) partially extracted\n", yellow("!"), sum.partial)
			}
			if sum.failed > 0 {
				fmt.Printf("%s %d file(s) failed\n", red("✗"), sum.failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output root directory")
	cmd.Flags().StringVar(&pdfMode, "pdf-mode", "", "PDF extraction mode: library or tool")
	cmd.Flags().StringVar(&djvuFormat, "djvu-format", "", "DjVu page format: tiff or png")
	cmd.Flags().BoolVar(&noMIME, "no-mime", false, "Classify by byte signature only")
	return cmd
}

type summary struct {
	extracted int
	failed    int
	partial   int
	skipped   int
}

func summarize(reports []domain.Report) summary {
	var s summary
	for _, r := range reports {
		s.extracted += r.Tally.Succeeded
		switch {
		case router.Skipped(r):
			s.skipped++
		case router.Failed(r):
			s.failed++
		case r.Tally.Partial():
			s.partial++
		}
	}
	return s
}

func formatReport(r domain.Report) string {
	name := r.Job.DisplayName
	family := dim(fmt.Sprintf("(%s)", r.Job.Family))

	switch {
	case router.Skipped(r):
		return fmt.Sprintf("%s %s: not found %s", red("✗"), bold(name), dim("(skipped)"))
	case r.Unsupported:
		return fmt.Sprintf("%s %s unsupported document type", dim("○"), bold(name))
	case r.Err != nil:
		return fmt.Sprintf("%s %s %s: %v", red("✗"), bold(name), family, r.Err)
	case r.Tally.Total == 0:
		return fmt.Sprintf("%s %s %s no embedded images", dim("○"), bold(name), family)
	}

	glyph := green("✓")
	if r.Tally.Partial() {
		glyph = yellow("!")
	}
	line := fmt.Sprintf("%s %s %s %s images %s\n  %s %s %s",
		glyph, bold(name), family, r.Tally, dim(r.Duration().Round(time.Millisecond).String()),
		cyan("path:"), r.Job.OutputDir, dim(humanize.Bytes(outputSize(r.Results))))

	if err := scheduler.Failures(r.Results); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				line += fmt.Sprintf("\n  %s %v", dim("↳"), e)
			}
		}
	}
	return line
}

func outputSize(results []domain.UnitResult) uint64 {
	var total uint64
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if info, err := os.Stat(r.Path); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
