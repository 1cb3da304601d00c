package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cellcommdb/config"
	"cellcommdb/services"
	"cellcommdb/storage"
)

var (
	inputFile string
	migrate   bool
)

var rootCmd = &cobra.Command{
	Use:          "collect",
	Short:        "Load cellcommdb CSV collections into the database",
	SilenceUsage: true,
}

var complexCmd = &cobra.Command{
	Use:   "complex",
	Short: "Load complexes and their protein composition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), "complex", func(ctx context.Context, c *services.CollectService) (*services.LoadResult, error) {
			return c.LoadComplexes(ctx, inputFile)
		})
	},
}

var proteinCmd = &cobra.Command{
	Use:   "protein",
	Short: "Load proteins",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), "protein", func(ctx context.Context, c *services.CollectService) (*services.LoadResult, error) {
			return c.LoadProteins(ctx, inputFile)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "Input CSV path or s3://bucket/key (default: from DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&migrate, "migrate", false, "Create missing tables before loading")
	rootCmd.AddCommand(complexCmd, proteinCmd)
}

func run(ctx context.Context, collection string, load func(context.Context, *services.CollectService) (*services.LoadResult, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := storage.OpenDB(cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	sources, err := storage.SourcesFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := services.NewCollectService(cfg, db, sources, logger, services.NewMetrics(reg))

	res, err := load(ctx, collector)
	if cfg.PushgatewayURL != "" {
		if perr := push.New(cfg.PushgatewayURL, "cellcommdb_collect").
			Grouping("collection", collection).
			Gatherer(reg).
			Push(); perr != nil {
			logger.Warn("Pushing metrics failed", zap.String("url", cfg.PushgatewayURL), zap.Error(perr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "run %s: read %d, incomplete %d, existing %d, duplicates %d, inserted %d (complexes %d, compositions %d, proteins %d)\n",
		res.RunID, res.RowsRead, res.Incomplete, res.Existing, res.Duplicates,
		res.Inserted, res.Complexes, res.Compositions, res.Proteins)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
