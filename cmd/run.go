package cmd

import (
	"fmt"

	"syncbench/core/config"
	"syncbench/core/database"
	"syncbench/core/logger"
	"syncbench/core/metrics"
	"syncbench/core/storage"

	"syncbench/feature/bench"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var paramsFileFlag string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the configured benchmark parameter sets",
	Long:  `Generates synthetic data for every parameter set, runs its sync strategy and records one benchmark row per run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}
		if err := metrics.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate metrics table: %w", err)
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := ensureBucket(cmd.Context(), store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return fmt.Errorf("failed to ensure bucket %q: %w", cfg.Storage.Bucket, err)
		}

		paramsFile := cfg.Bench.ParamsFile
		if paramsFileFlag != "" {
			paramsFile = paramsFileFlag
		}
		sets, err := bench.LoadParameterSets(paramsFile)
		if err != nil {
			return err
		}

		recorder := metrics.NewRecorder(metrics.NewGormSink(db), logg)
		svc := bench.NewService(db, store, cfg.Storage.Bucket, recorder, logg, cfg.Bench.Concurrency)

		logg.Info("Executing parameter sets",
			zap.String("file", paramsFile),
			zap.Int("count", len(sets)),
			zap.Int("concurrency", cfg.Bench.Concurrency),
		)

		reports, runErr := svc.ExecuteAll(cmd.Context(), sets)

		// Pretty Console Output
		fmt.Println("\n--- Benchmark Results ---")
		for _, rep := range reports {
			statusColor := "\033[32m" // Green
			if rep.Status != metrics.StatusCompleted {
				statusColor = "\033[31m" // Red
			}
			resetColor := "\033[0m"

			fmt.Printf("%-24s %-14s %s%-10s%s %8.3fs read=%d written=%d anomalies=%d",
				rep.Set, rep.Strategy, statusColor, rep.Status, resetColor,
				rep.DurationS, rep.RowsRead, rep.RowsWritten, rep.AnomalyCount)
			if rep.ErrorCode != "" {
				fmt.Printf(" error=%s", rep.ErrorCode)
			}
			fmt.Println()
		}
		fmt.Println("-------------------------")

		return runErr
	},
}

func init() {
	runCmd.Flags().StringVarP(&paramsFileFlag, "params", "p", "", "parameter file (overrides bench.params_file)")
	RootCmd.AddCommand(runCmd)
}
