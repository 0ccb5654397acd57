package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vox-portal/internal/app"
	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/server"
)

const shutdownGrace = 10 * time.Second

// errInvalidConfig has already been reported to the user.
var errInvalidConfig = errors.New("invalid configuration")

// configPaths collects repeated -config flags in order.
type configPaths []string

func (c *configPaths) String() string { return strings.Join(*c, ",") }

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

type options struct {
	configs configPaths
	port    int
	host    string
	version bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("vox-portal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&o.configs, "config", "configuration file, repeatable; later files win")
	fs.Var(&o.configs, "c", "shorthand for -config")
	fs.IntVar(&o.port, "port", 0, "listen port (overrides config)")
	fs.IntVar(&o.port, "p", 0, "shorthand for -port")
	fs.StringVar(&o.host, "host", "", "listen host (overrides config)")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &o, nil
}

// loadConfig resolves defaults, files, VOX_* env and flags, in that order.
// Problems are printed to stderr as a list.
func loadConfig(o *options, stderr io.Writer) (*config.Config, error) {
	if len(o.configs) == 0 {
		if path := config.Discover(config.DefaultFileName); path != "" {
			o.configs = append(o.configs, path)
		}
	}
	cfg, err := config.LoadFromFiles(o.configs...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, o.port, o.host)

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(stderr, "vox-portal cannot start:")
		for _, issue := range issues {
			fmt.Fprintf(stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(stderr, "Set values in vox-portal.toml, VOX_* environment variables, or flags.")
		return nil, errInvalidConfig
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(common.LoggingConfig{
		Level:      cfg.Logging.Level,
		Outputs:    cfg.Logging.Outputs,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintf(stdout, "vox-portal %s\n", config.Info())
		return nil
	}

	cfg, err := loadConfig(o, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("config_files", o.configs.String()).
		Str("polygon_key", config.Redact(cfg.Upstream.Polygon.APIKey)).
		Str("url", cfg.BaseURL()).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer application.Close()

	srv := server.New(application)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errInvalidConfig):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "vox-portal: %v\n", err)
		os.Exit(1)
	}
}
