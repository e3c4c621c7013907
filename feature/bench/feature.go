package bench

import (
	"syncbench/core/metrics"
	"syncbench/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Bench feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, recorder *metrics.Recorder, logger *zap.Logger, paramsFile string, concurrency int) *Feature {
	svc := NewService(db, client, bucket, recorder, logger, concurrency)
	h := NewHandler(svc, paramsFile)
	return &Feature{service: svc, handler: h}
}

// Service exposes the underlying service for CLI use.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "bench"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
