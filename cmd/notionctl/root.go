package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/credential"
	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
	"github.com/fyrsmithlabs/notionctl/internal/secrets"
	"github.com/fyrsmithlabs/notionctl/internal/telemetry"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

const instrumentationName = "github.com/fyrsmithlabs/notionctl"

// globalOptions are the persistent root flags.
type globalOptions struct {
	configPath string
	logLevel   string
	output     string
}

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg        *config.Config
	logger     *logging.Logger
	dispatcher dispatch.Service
	meter      metric.Meter
	close      func(ctx context.Context) error
}

// builder constructs the runtime. Tests substitute their own.
type builder func(ctx context.Context, opts globalOptions, stderr io.Writer) (*runtime, error)

// cli holds per-invocation state shared by subcommands.
type cli struct {
	opts  globalOptions
	build builder
	rt    *runtime
}

func newRootCmd(build builder) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:   "notionctl",
		Short: "Notion workspace tools for the command line and for agents",
		Long: `notionctl runs Notion API tools from the command line and serves the same
tools over MCP or HTTP.

The API token is read from NOTION_API_TOKEN, or from the OS keychain once
stored with "notionctl setup --token <token>".`,
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return checkFormat(c.opts.output)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.shutdown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.opts.configPath, "config", "", "Config file (default ~/.config/notionctl/config.yaml)")
	root.PersistentFlags().StringVar(&c.opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVarP(&c.opts.output, "output", "o", formatJSON, "Output format: json or yaml")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return argumentError("%v", err)
	})

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("notionctl version %s\n", version))

	for _, cmd := range newToolCmds(c) {
		root.AddCommand(cmd)
	}
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newVersionCmd())

	return root
}

// runtime builds the runtime on first use. quietLevel replaces the
// configured log level unless --log-level was given.
func (c *cli) runtime(cmd *cobra.Command, quietLevel string) (*runtime, error) {
	if c.rt != nil {
		return c.rt, nil
	}
	opts := c.opts
	if opts.logLevel == "" {
		opts.logLevel = quietLevel
	}
	rt, err := c.build(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	c.rt = rt
	return rt, nil
}

func (c *cli) shutdown(ctx context.Context) error {
	if c.rt == nil || c.rt.close == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := c.rt.close(ctx)
	c.rt = nil
	return err
}

// buildRuntime wires the real dependencies: config, logging, telemetry,
// credential store, Notion session and dispatcher.
func buildRuntime(ctx context.Context, opts globalOptions, stderr io.Writer) (*runtime, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logCfg, err := logging.NewConfig(level, cfg.Logging.Format)
	if err != nil {
		return nil, argumentError("invalid logging configuration: %v", err)
	}
	logger, err := logging.NewLogger(logCfg, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	logger = logger.WithOTel(instrumentationName, tel.LoggerProvider())
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("problems", h.Problems))
	}

	scrubber := secrets.Default()
	store := credential.NewStore(cfg.Credential, credential.KeyringStore{}, logger.Underlying().Named("credential"))
	session := notion.NewClientSession(store,
		notion.OptionsFromConfig(cfg.Notion, logger.Underlying().Named("notion")),
		scrubber.AddLiteral,
	)

	env := &tools.Env{Session: session, Tokens: store, Now: time.Now}
	d := dispatch.New(env, dispatch.Options{
		Logger:   logger,
		Scrubber: scrubber,
		Tracer:   tel.Tracer(instrumentationName),
		Metrics:  dispatch.NewMetrics(tel.Meter(instrumentationName), logger.Underlying()),
	})

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		dispatcher: d,
		meter:      tel.Meter(instrumentationName),
		close: func(ctx context.Context) error {
			return errors.Join(tel.Shutdown(ctx), logger.Sync())
		},
	}, nil
}
