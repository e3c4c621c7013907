package dest

import (
	"context"
	"fmt"
	"time"

	"syncbench/core/database"
	"syncbench/core/reconcile"
	"syncbench/core/retry"
	"syncbench/core/snapshot"

	"gorm.io/gorm"
)

const createBatchSize = 500

// warehouseRow is one row of the destination's current table. Identity is
// deliberately not a unique key: the blind-append strategy must be able to
// create duplicates, because measuring that drift is part of the benchmark.
type warehouseRow struct {
	ID        uint   `gorm:"primaryKey"`
	Identity  string `gorm:"column:identity;size:64;index"`
	UpdatedAt string `gorm:"column:updated_at;size:40"`
	Payload   string `gorm:"column:payload"`
}

// EventRow is one row of the append-only sync_events table.
type EventRow struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	RunID      string    `gorm:"column:run_id;size:36;index" json:"run_id"`
	Identity   string    `gorm:"column:identity;size:64" json:"identity"`
	UpdateType string    `gorm:"column:update_type;size:16" json:"update_type"`
	SourceTS   *string   `gorm:"column:source_ts;size:40" json:"source_ts,omitempty"`
	SourceData *string   `gorm:"column:source_data" json:"source_data,omitempty"`
	DestTS     *string   `gorm:"column:dest_ts;size:40" json:"dest_ts,omitempty"`
	DestData   *string   `gorm:"column:dest_data" json:"dest_data,omitempty"`
	EmittedAt  time.Time `gorm:"column:emitted_at" json:"emitted_at"`
}

// eventColumns is the schema the event writer requires of its table.
var eventColumns = []string{
	"run_id", "identity", "update_type",
	"source_ts", "source_data", "dest_ts", "dest_data", "emitted_at",
}

// WarehouseDestination is a destination backed by two relational tables:
// a current-state table and an append-only event log.
type WarehouseDestination struct {
	db           *gorm.DB
	currentTable string
	eventsTable  string
}

// NewWarehouseDestination creates a destination over an established
// connection.
func NewWarehouseDestination(db *gorm.DB, currentTable, eventsTable string) *WarehouseDestination {
	return &WarehouseDestination{db: db, currentTable: currentTable, eventsTable: eventsTable}
}

// EnsureTables creates both tables if missing.
func (d *WarehouseDestination) EnsureTables(ctx context.Context) error {
	if err := d.db.WithContext(ctx).Table(d.currentTable).AutoMigrate(&warehouseRow{}); err != nil {
		return fmt.Errorf("migrate table %q: %w", d.currentTable, err)
	}
	if err := d.db.WithContext(ctx).Table(d.eventsTable).AutoMigrate(&EventRow{}); err != nil {
		return fmt.Errorf("migrate table %q: %w", d.eventsTable, err)
	}
	return nil
}

// Type implements Destination.
func (d *WarehouseDestination) Type() string { return "warehouse" }

// Current implements Destination.
func (d *WarehouseDestination) Current(ctx context.Context) (*snapshot.Snapshot, error) {
	var rows []warehouseRow
	err := retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		if err := d.db.WithContext(ctx).Table(d.currentTable).Find(&rows).Error; err != nil {
			return retry.Transient("read table "+d.currentTable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recs := make([]snapshot.Record, 0, len(rows))
	for _, row := range rows {
		ts, err := snapshot.ParseTimestamp(row.UpdatedAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, snapshot.Record{
			Identity:  row.Identity,
			Timestamp: ts,
			Payload:   row.Payload,
		})
	}
	return snapshot.New(d.currentTable, recs)
}

// Overwrite implements Destination. Delete and insert run in one
// transaction so readers never observe the in-between state.
func (d *WarehouseDestination) Overwrite(ctx context.Context, recs []snapshot.Record) error {
	rows := toWarehouseRows(recs)
	return retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Table(d.currentTable).Where("1 = 1").Delete(&warehouseRow{}).Error; err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			return tx.Table(d.currentTable).CreateInBatches(rows, createBatchSize).Error
		})
		return retry.Transient("overwrite "+d.currentTable, err)
	})
}

// AppendRecords implements Destination. No existing-state read, no
// dedup: this is the blind append the incremental strategy is defined by.
func (d *WarehouseDestination) AppendRecords(ctx context.Context, recs []snapshot.Record) error {
	rows := toWarehouseRows(recs)
	if len(rows) == 0 {
		return nil
	}
	return retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		if err := d.db.WithContext(ctx).Table(d.currentTable).CreateInBatches(rows, createBatchSize).Error; err != nil {
			return retry.Transient("append to "+d.currentTable, err)
		}
		return nil
	})
}

// AppendEvents implements Destination. The table schema is verified
// before any row is written; on mismatch the whole batch is refused.
func (d *WarehouseDestination) AppendEvents(ctx context.Context, events []reconcile.Event) error {
	if err := validateEvents(d.eventsTable, events); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	ok, missing, err := database.HasColumns(d.db, d.eventsTable, eventColumns)
	if err != nil {
		return fmt.Errorf("inspect table %q: %w", d.eventsTable, err)
	}
	if !ok {
		return &SchemaMismatchError{Location: d.eventsTable, Missing: missing}
	}

	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		row := EventRow{
			RunID:      ev.RunID,
			Identity:   ev.Identity,
			UpdateType: string(ev.UpdateType),
			EmittedAt:  ev.EmittedAt,
		}
		if ev.SourceRecord != nil {
			ts := snapshot.FormatTimestamp(ev.SourceRecord.Timestamp)
			payload := ev.SourceRecord.Payload
			row.SourceTS, row.SourceData = &ts, &payload
		}
		if ev.DestRecord != nil {
			ts := snapshot.FormatTimestamp(ev.DestRecord.Timestamp)
			payload := ev.DestRecord.Payload
			row.DestTS, row.DestData = &ts, &payload
		}
		rows = append(rows, row)
	}

	// One transaction per batch keeps the append atomic; transient
	// failures retry the batch as a whole, never per event.
	return retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Table(d.eventsTable).CreateInBatches(rows, createBatchSize).Error
		})
		return retry.Transient("append events to "+d.eventsTable, err)
	})
}

func toWarehouseRows(recs []snapshot.Record) []warehouseRow {
	rows := make([]warehouseRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, warehouseRow{
			Identity:  rec.Identity,
			UpdatedAt: snapshot.FormatTimestamp(rec.Timestamp),
			Payload:   rec.Payload,
		})
	}
	return rows
}
