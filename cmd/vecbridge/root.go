package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/config"
	"github.com/fyrsmithlabs/vecbridge/internal/logging"
	"github.com/fyrsmithlabs/vecbridge/internal/telemetry"
	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

// app holds what every command needs once flags are parsed.
type app struct {
	configPath  string
	logLevel    string
	datasetID   string
	indexStruct string

	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	registry  *vectorstore.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vecbridge",
		Short: "Operate a dataset's vector store",
		Long: `vecbridge runs vector store operations for a dataset against the
configured backend.

Configuration comes from --config (a YAML file under ~/.config/vecbridge or
/etc/vecbridge) or from environment variables such as VECTORSTORE_URL.`,
		Version:           fmt.Sprintf("%s (%s)", version, gitCommit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: environment only)")
	flags.StringVar(&a.logLevel, "log-level", "", "override observability.log_level")
	flags.StringVar(&a.datasetID, "dataset", "", "dataset id")
	flags.StringVar(&a.indexStruct, "index-struct", "", "dataset index structure JSON, as printed by create")

	root.AddCommand(
		newCreateCmd(a),
		newAddCmd(a),
		newExistsCmd(a),
		newDeleteIDsCmd(a),
		newDeleteMetaCmd(a),
		newSearchCmd(a),
		newFullTextCmd(a),
		newDropCmd(a),
		newServeCmd(a),
		newStoreCmd(a),
	)
	return root
}

// setup loads configuration and builds telemetry, logger and registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadWithFile(a.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		a.cfg = config.Load()
	}
	if a.logLevel != "" {
		a.cfg.Observability.LogLevel = a.logLevel
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.telemetry, err = telemetry.New(cmd.Context(), telemetry.FromObservability(a.cfg.Observability))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	logCfg, err := logging.FromObservability(a.cfg.Observability)
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if logCfg.Output.OTEL && a.telemetry.LoggerProvider() == nil {
		logCfg.Output.OTEL = false
	}
	a.logger, err = logging.NewLogger(logCfg, a.telemetry.LoggerProvider())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	a.registry = vectorstore.NewDefaultRegistry(a.cfg.VectorStore, a.logger.Underlying())

	a.logger.Debug(cmd.Context(), "vecbridge configured",
		zap.String("command", cmd.Name()),
		zap.String("vectorstore", a.cfg.VectorStore.Type),
		logging.URL("url", a.cfg.VectorStore.URL),
	)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	if a.logger != nil {
		errs = append(errs, a.logger.Sync())
	}
	return errors.Join(errs...)
}

// dataset returns the dataset named by the --dataset flags.
func (a *app) dataset() (*vectorstore.Dataset, error) {
	if a.datasetID == "" {
		return nil, errors.New("--dataset is required")
	}
	return &vectorstore.Dataset{ID: a.datasetID, IndexStruct: a.indexStruct}, nil
}

// withVector runs fn against the dataset's vector store, closing it after.
func (a *app) withVector(ctx context.Context, fn func(context.Context, *vectorstore.Dataset, vectorstore.Vector) error) error {
	dataset, err := a.dataset()
	if err != nil {
		return err
	}
	factory, err := a.registry.Get(vectorstore.VectorType(a.cfg.VectorStore.Type))
	if err != nil {
		return err
	}

	ctx = logging.WithDatasetID(ctx, dataset.ID)
	return vectorstore.WithVector(ctx, factory, dataset, nil, nil, func(ctx context.Context, v vectorstore.Vector) error {
		return fn(ctx, dataset, v)
	})
}
