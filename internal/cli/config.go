package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/teamcutter/imgrip/internal/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if show {
				return toml.NewEncoder(os.Stdout).Encode(cfg)
			}

			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("%s Config written to %s\n", green("✓"), bold(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the configuration instead of writing it")
	return cmd
}
