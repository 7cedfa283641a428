package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/apisync/pkg/pipeline"
	"github.com/gnana997/apisync/pkg/report"
	"github.com/gnana997/apisync/pkg/util"
	"github.com/gnana997/apisync/pkg/watch"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by all commands after flag parsing.
type app struct {
	flags   flagValues
	cfg     pipeline.Config
	logger  *slog.Logger
	printer *report.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "apisync",
		Short: "Regenerate the API method table from the JavaScript API bundle",
		Long: `apisync extracts the methods of a hand-written JavaScript API bundle and
rewrites the generated method table in the editor extension that offers
completions for it. Running apisync without a command is the same as
running "apisync sync".`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "project config file (default "+defaultConfigPath+")")
	pf.StringVar(&a.flags.source, "source", "", "source bundle file (default api.js)")
	pf.StringVar(&a.flags.target, "target", "", "consumer file holding the generated block (default src/extension.ts)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text, json")

	addSyncFlags(root, &a.flags)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Extract methods and patch the consumer file once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd)
		},
	}
	addSyncFlags(syncCmd, &a.flags)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the extracted method table without touching the consumer file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd)
		},
	}
	listCmd.Flags().BoolVar(&a.flags.jsonOut, "json", false, "print JSON")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run sync whenever the source bundle changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd)
		},
	}
	watchCmd.Flags().BoolVar(&a.flags.strict, "strict", false, "treat warnings as errors")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "apisync %s\n", version)
		},
	}

	root.AddCommand(syncCmd, listCmd, watchCmd, versionCmd)
	return root
}

func addSyncFlags(cmd *cobra.Command, flags *flagValues) {
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the diff instead of writing")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on zero methods, a missing anchor or syntax errors")
}

// setup loads the project config and builds the logger and printer.
func (a *app) setup(cmd *cobra.Command) error {
	a.printer = report.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	configPath, explicit := a.flags.configPath, a.flags.configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}
	project, err := loadProjectConfig(configPath, explicit)
	if err != nil {
		a.printer.Error(err)
		return err
	}

	levelName, formatName := resolveLogSettings(a.flags, project)
	a.logger, err = newLogger(levelName, formatName, cmd.ErrOrStderr())
	if err != nil {
		a.printer.Error(err)
		return err
	}

	a.cfg = resolvePipelineConfig(a.flags, project)
	if err := a.cfg.Validate(); err != nil {
		a.printer.Error(err)
		return err
	}
	return nil
}

// newLogger builds the CLI logger on top of util.DefaultLoggerConfig.
// Empty names keep the defaults.
func newLogger(levelName, formatName string, out io.Writer) (*slog.Logger, error) {
	cfg := util.DefaultLoggerConfig()

	level, err := util.ParseLogLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := util.ParseLogFormat(formatName)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.Format = format
	if out != nil {
		cfg.Output = out
	}
	return util.NewLogger(cfg), nil
}

func (a *app) runSync(cmd *cobra.Command) error {
	p := pipeline.New(a.cfg, a.logger)
	defer p.Close()

	result, err := p.Run(cmd.Context())
	if err != nil {
		a.printer.Error(err)
		return err
	}
	a.printer.Summary(result)
	return nil
}

func (a *app) runList(cmd *cobra.Command) error {
	p := pipeline.New(a.cfg, a.logger)
	defer p.Close()

	result, err := p.Extract(cmd.Context())
	if err != nil {
		a.printer.Error(err)
		return err
	}
	if a.flags.jsonOut {
		return a.printer.MethodsJSON(result.Methods)
	}
	a.printer.Methods(result.Methods)
	return nil
}

func (a *app) runWatch(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(a.cfg, a.logger)
	defer p.Close()

	w, err := watch.New(p, a.cfg.Source, a.cfg.Target, watch.Options{
		OnResult: func(result *pipeline.Result, err error) {
			if err != nil {
				a.printer.Error(err)
				return
			}
			a.printer.Summary(result)
		},
	}, a.logger)
	if err != nil {
		a.printer.Error(err)
		return err
	}
	defer w.Stop()

	if err := w.StartAndSync(ctx); err != nil {
		a.printer.Error(err)
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutting down")
	return nil
}
