package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"syncbench/core/config"
	"syncbench/core/database"
	"syncbench/core/loader"
	"syncbench/core/logger"
	"syncbench/core/metrics"
	"syncbench/core/middleware/auth"
	"syncbench/core/middleware/requestid"
	"syncbench/core/storage"

	"syncbench/feature/bench"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the benchmark server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Required: metrics rows and warehouse
		// destinations both live here)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := metrics.Migrate(db); err != nil {
			logg.Fatal("Failed to migrate metrics table", zap.Error(err))
		}

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		if err := ensureBucket(cmd.Context(), store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Fatal("Failed to ensure bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}

		recorder := metrics.NewRecorder(metrics.NewGormSink(db), logg)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(bench.NewFeature(db, store, cfg.Storage.Bucket, recorder, logg,
			cfg.Bench.ParamsFile, cfg.Bench.Concurrency))

		// Middleware Registration
		// 1. Request ID (Must be first to trace everything)
		app.Use(requestid.New())

		// 2. Logging Middleware (Custom to use Zap + Request ID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRequestID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Public endpoints: health and Prometheus scrape
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// ensureBucket creates the snapshot bucket on first start.
func ensureBucket(ctx context.Context, store storage.Client, bucket, region string) error {
	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return store.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func init() {
	RootCmd.AddCommand(startCmd)
}
