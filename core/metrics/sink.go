package metrics

import (
	"context"

	"syncbench/core/retry"

	"gorm.io/gorm"
)

// Sink persists finalized metrics rows. Implementations only ever append;
// they never update or delete prior rows.
type Sink interface {
	Flush(ctx context.Context, row *Row) error
}

// GormSink appends metrics rows to a relational table.
type GormSink struct {
	db *gorm.DB
}

// NewGormSink creates a sink over an established connection.
func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

// Flush appends one row, retrying transient database failures. A metrics
// row is the only durable trace of a failed run, so losing one to a
// network blip is worse than the extra write attempts.
func (s *GormSink) Flush(ctx context.Context, row *Row) error {
	return retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return retry.Transient("flush metrics row", err)
		}
		return nil
	})
}

// Migrate creates the metrics table if missing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Row{})
}
