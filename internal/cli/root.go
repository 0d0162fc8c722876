package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/teamcutter/imgrip/internal/config"
	"github.com/teamcutter/imgrip/internal/extractor"
	"github.com/teamcutter/imgrip/internal/router"
	"github.com/teamcutter/imgrip/internal/runner"
	"github.com/teamcutter/imgrip/internal/sniff"
	"github.com/teamcutter/imgrip/internal/state"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

func Execute() error {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "imgrip",
		Short:         "Extract embedded images from PDF, DjVu, Office and EPUB files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.imgrip/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newProcessCmd(opts),
		newDoctorCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("imgrip failed")
	}
	return err
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	return config.Load(opts.configPath)
}

type pipeline struct {
	router  *router.Router
	history *state.SQLiteState
}

func (p *pipeline) Close() error {
	return p.history.Close()
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	history, err := state.NewSQLite(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	r := runner.New(cfg.ToolTimeout())

	var classifier *sniff.Sniffer
	if cfg.UseMIME {
		classifier = sniff.New(r, cfg.Tools.File)
	} else {
		classifier = sniff.New(nil, "")
	}

	return &pipeline{
		router: router.New(classifier, extractor.New(cfg, r), router.Options{
			OutputRoot: cfg.OutputRoot,
			TempDir:    cfg.TempDir,
			History:    history,
		}),
		history: history,
	}, nil
}
