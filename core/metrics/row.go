package metrics

import (
	"context"
	"errors"
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Row is one strategy execution's metrics. Rows are write-once: the
// recorder appends them and nothing in this system ever updates or
// aggregates them — aggregation belongs to external consumers querying by
// run_id, strategy, source_type and destination_type.
type Row struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// RunID isolates this run from every concurrent run.
	RunID string `gorm:"column:run_id;size:36;index" json:"run_id"`

	// ControllerName identifies the driving component (e.g. "runner",
	// "materialize").
	ControllerName string `gorm:"column:controller_name;size:64" json:"controller_name"`

	Strategy        string `gorm:"column:strategy;size:32;index" json:"strategy"`
	SourceType      string `gorm:"column:source_type;size:32" json:"source_type"`
	DestinationType string `gorm:"column:destination_type;size:32" json:"destination_type"`

	// StartTS/EndTS bound exactly the strategy's declared timer window;
	// setup work such as materialization never leaks into them.
	StartTS   time.Time `gorm:"column:start_ts" json:"start_ts"`
	EndTS     time.Time `gorm:"column:end_ts" json:"end_ts"`
	DurationS float64   `gorm:"column:duration_s" json:"duration_s"`

	RowsRead     int64 `gorm:"column:rows_read" json:"rows_read"`
	RowsWritten  int64 `gorm:"column:rows_written" json:"rows_written"`
	RowsInserted int64 `gorm:"column:rows_inserted" json:"rows_inserted"`
	RowsUpdated  int64 `gorm:"column:rows_updated" json:"rows_updated"`
	RowsDeleted  int64 `gorm:"column:rows_deleted" json:"rows_deleted"`
	AnomalyCount int64 `gorm:"column:anomaly_count" json:"anomaly_count"`

	// IsColdRun is caller-supplied; cache warmth is an execution
	// environment property the recorder cannot infer.
	IsColdRun bool `gorm:"column:is_cold_run" json:"is_cold_run"`

	// ExcludedFromBenchmark flags setup rows (synthetic "current"
	// materialization) that must never be aggregated with strategy timings.
	ExcludedFromBenchmark bool `gorm:"column:excluded_from_benchmark" json:"excluded_from_benchmark"`

	Seed int64 `gorm:"column:seed" json:"seed"`

	Status    string `gorm:"column:status;size:16" json:"status"`
	ErrorCode string `gorm:"column:error_code;size:32" json:"error_code,omitempty"`
}

// TableName sets the metrics sink table.
func (Row) TableName() string { return "benchmark_runs" }

// Coder is implemented by the typed errors of this system to expose a
// stable machine-readable code for failed MetricsRows.
type Coder interface {
	ErrorCode() string
}

// CodeOf maps an error to the code recorded on a failed row.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "internal"
}
