// Package cli implements the anticrisis command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/anticrisis-view/internal/backend"
	"github.com/iwvelando/anticrisis-view/internal/config"
	"github.com/iwvelando/anticrisis-view/internal/logging"
	"github.com/iwvelando/anticrisis-view/internal/metrics"
	"github.com/iwvelando/anticrisis-view/internal/session"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options contain configuration for the CLI.
type Options struct {
	Output  io.Writer
	Version string
}

// CLI represents the command-line interface.
type CLI struct {
	out     io.Writer
	version string

	configPath string
	logLevel   string

	conf    *config.Configuration
	logger  *zap.Logger
	rootCmd *cobra.Command
}

// NewCLI creates a new CLI instance.
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	cli := &CLI{out: opts.Output, version: opts.Version, logger: zap.NewNop()}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the command selected by os.Args.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "anticrisis",
		Short:         "Inspect and export anticrisis period snapshots",
		Version:       cli.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			_ = cli.logger.Sync()
		},
	}
	cmd.SetOut(cli.out)

	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "path to configuration file (default: defaults and ANTICRISIS_* environment)")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		cli.newSnapshotCmd(),
		cli.newPeriodsCmd(),
		cli.newOrgsCmd(),
		cli.newCrisisTypesCmd(),
		cli.newPlansCmd(),
		cli.newLoginCmd(),
		cli.newLogoutCmd(),
		cli.newServeCmd(),
	)
	return cmd
}

// setup loads and validates the configuration and builds the logger.
func (cli *CLI) setup() error {
	conf, err := config.LoadConfiguration(cli.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(conf.Logging, cli.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cli.conf = conf
	cli.logger = logger
	return nil
}

// openSession opens the token store, persisted under the configured token file
// or ~/.anticrisis/token.
func (cli *CLI) openSession() (*session.Store, error) {
	path := cli.conf.Backend.TokenFile
	if path == "" {
		var err error
		path, err = session.DefaultPath()
		if err != nil {
			cli.logger.Warn("token will not be persisted",
				zap.String("op", "cli.openSession"),
				zap.Error(err),
			)
			path = ""
		}
	}
	return session.Open(path, cli.conf.Backend.Token, cli.logger)
}

func (cli *CLI) client() (*backend.Client, error) {
	store, err := cli.openSession()
	if err != nil {
		return nil, err
	}
	return backend.NewClient(cli.conf.Backend.BaseURL,
		backend.WithHTTPClient(backend.NewHTTPClient(cli.conf.Backend.Timeout)),
		backend.WithSession(store),
		backend.WithLogger(cli.logger),
	)
}

// assembler builds the snapshot assembler over the configured source mode.
func (cli *CLI) assembler(client *backend.Client, rec *metrics.Recorder) (*snapshot.Assembler, error) {
	policy, err := cli.conf.FailurePolicy()
	if err != nil {
		return nil, err
	}

	var source snapshot.Source = client
	if cli.conf.Backend.Mode == config.ModeTable {
		source = backend.NewTableSource(client)
	}

	cli.logger.Debug("assembler configured",
		zap.String("op", "cli.assembler"),
		zap.String("mode", cli.conf.Backend.Mode),
		zap.String("failure_policy", cli.conf.Backend.FailurePolicy),
		zap.Bool("fin_model", cli.conf.Backend.FinModel),
	)

	return snapshot.NewAssembler(source,
		snapshot.WithLogger(cli.logger),
		snapshot.WithMetrics(rec),
		snapshot.WithFailurePolicy(policy),
		snapshot.WithFinModel(cli.conf.Backend.FinModel),
	), nil
}
