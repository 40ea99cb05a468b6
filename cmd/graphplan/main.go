package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/graphplan/internal/config"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/executor"
	"github.com/hanpama/graphplan/internal/logging"
	"github.com/hanpama/graphplan/internal/otel"
	"github.com/hanpama/graphplan/internal/schema"
)

func main() {
	a := &app{}
	err := a.command().Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath string
	schemaPath string

	// flag overrides
	planCacheSize int
	maxQueryDepth int
	debug         bool

	cfg      *config.Config
	teardown []func()
}

// command builds the command tree. Callers run close once the command
// returns, whether or not it failed.
func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:               "graphplan",
		Short:             "Validate, plan and execute GraphQL operations against a schema",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVarP(&a.schemaPath, "schema", "s", "", "GraphQL SDL file")
	flags.IntVar(&a.planCacheSize, "plan-cache-size", 0, "number of compiled plans kept (overrides config)")
	flags.IntVar(&a.maxQueryDepth, "max-query-depth", 0, "maximum field nesting depth (overrides config)")
	flags.BoolVar(&a.debug, "debug", false, "include unhandled error details in responses (overrides config)")

	root.AddCommand(
		newValidateCmd(a),
		newPlanCmd(a),
		newSDLCmd(a),
		newExecuteCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("plan-cache-size") {
		cfg.PlanCacheSize = a.planCacheSize
	}
	if flags.Changed("max-query-depth") {
		cfg.MaxQueryDepth = a.maxQueryDepth
	}
	if flags.Changed("debug") {
		cfg.Execution.Debug = a.debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	eventbus.Use(eventbus.New())
	a.teardown = append(a.teardown, logging.Setup(log), func() {
		eventbus.Use(nil)
		_ = log.Sync()
	})

	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	a.teardown = append(a.teardown, func() { _ = shutdown(context.Background()) })
	return nil
}

func (a *app) close() {
	for i := len(a.teardown) - 1; i >= 0; i-- {
		a.teardown[i]()
	}
	a.teardown = nil
}

func (a *app) loadSchema() (*schema.Schema, error) {
	if a.schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	sdl, err := os.ReadFile(a.schemaPath)
	if err != nil {
		return nil, err
	}
	return schema.BuildFromSDL(string(sdl))
}

func (a *app) executor(ctx context.Context, opts executor.Options) (*executor.Executor, error) {
	s, err := a.loadSchema()
	if err != nil {
		return nil, err
	}
	opts.PlanCacheSize = a.cfg.PlanCacheSize
	opts.MaxQueryDepth = a.cfg.MaxQueryDepth
	opts.MaxConcurrency = a.cfg.Execution.MaxConcurrency
	opts.Debug = a.cfg.Execution.Debug
	return executor.New(ctx, s, opts)
}

func readQuery(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--query is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
