package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ironsheep/artcreator/internal/config"
	"github.com/ironsheep/artcreator/internal/logging"
	"github.com/ironsheep/artcreator/internal/server"
	"github.com/ironsheep/artcreator/internal/workflow"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "artcreator",
		Short: "MCP server for turning images into craft templates",
		Long: `artcreator serves an image editing workflow over MCP on stdin/stdout.

Import an image, rotate, mirror or crop it with up to three levels of undo,
then generate a paper, fabric or wood template from the result.

Settings come from an optional TOML file (--config) and ARTCREATOR_*
environment variables such as ARTCREATOR_LOG_LEVEL or
ARTCREATOR_TEMPLATE_MATERIAL. Logs are written to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cfg, stdin, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newConfigCommand(opts))
	return rootCmd
}

func serve(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}

	session := workflow.NewSession(nil, nil, nil,
		workflow.WithLogger(logger),
		workflow.WithHistoryCapacity(cfg.Session.HistoryCapacity),
	)
	logger.Debug("starting", slog.String("version", Version), slog.String("build_time", BuildTime), slog.String("commit", GitCommit))

	srv := server.New(session, server.Options{
		Defaults: cfg.Template,
		Version:  Version,
		Logger:   logger,
	})
	if err := srv.Serve(stdin, stdout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "artcreator %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
