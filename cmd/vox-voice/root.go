package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigFiles []string
	Verbose     bool
	Format      string // "text" | "json"

	// LoadConfig allows overriding config loading (for testing).
	LoadConfig func(paths ...string) (*config.Config, error)
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{LoadConfig: config.LoadFromFiles}
	return newRootCommandWith(opts)
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vox-voice",
		Short:   "Voice command console for vox-portal",
		Version: config.Info().String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringSliceVarP(&opts.ConfigFiles, "config", "c", nil, "configuration file path (repeatable)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log router and loader activity to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newListenCommand(opts))
	cmd.AddCommand(newCommandsCommand(opts))

	return cmd
}

// load resolves configuration the same way the portal binary does.
func (o *rootOptions) load() (*config.Config, error) {
	paths := o.ConfigFiles
	if len(paths) == 0 {
		if path := config.Discover(config.DefaultFileName); path != "" {
			paths = []string{path}
		}
	}
	return o.LoadConfig(paths...)
}

func (o *rootOptions) logger(cmd *cobra.Command) *common.Logger {
	if !o.Verbose {
		return common.NewSilentLogger()
	}
	return common.NewLoggerWithOutput("debug", cmd.ErrOrStderr())
}
