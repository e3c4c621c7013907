package source

import (
	"context"
	"fmt"

	"syncbench/core/retry"
	"syncbench/core/snapshot"

	"gorm.io/gorm"
)

const createBatchSize = 500

// sqlRow is the relational row shape shared by current and update tables.
// Timestamps travel as RFC 3339 strings for the same reason as the parquet
// schema: the offset must survive the round trip.
type sqlRow struct {
	Identity  string `gorm:"column:identity;primaryKey;size:64"`
	UpdatedAt string `gorm:"column:updated_at;size:40"`
	Payload   string `gorm:"column:payload"`
}

// SQLSource is a system of record backed by two relational tables, one
// holding the full current state and one holding the update slice.
type SQLSource struct {
	db           *gorm.DB
	currentTable string
	updatesTable string
}

// NewSQLSource creates a source over an established connection.
func NewSQLSource(db *gorm.DB, currentTable, updatesTable string) *SQLSource {
	return &SQLSource{db: db, currentTable: currentTable, updatesTable: updatesTable}
}

// Type implements Source.
func (s *SQLSource) Type() string { return "sql" }

// Current implements Source.
func (s *SQLSource) Current(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.read(ctx, s.currentTable)
}

// Updates implements Source.
func (s *SQLSource) Updates(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.read(ctx, s.updatesTable)
}

func (s *SQLSource) read(ctx context.Context, table string) (*snapshot.Snapshot, error) {
	var rows []sqlRow
	err := retry.Do(ctx, retry.DefaultMaxRetries, func() error {
		if err := s.db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			return retry.Transient("read table "+table, err)
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
	return snapshot.New(table, recs)
}

// WriteCurrent implements Materializer.
func (s *SQLSource) WriteCurrent(ctx context.Context, recs []snapshot.Record) error {
	return s.replaceTable(ctx, s.currentTable, recs)
}

// WriteUpdates implements Materializer.
func (s *SQLSource) WriteUpdates(ctx context.Context, recs []snapshot.Record) error {
	return s.replaceTable(ctx, s.updatesTable, recs)
}

// replaceTable creates the table if missing and replaces its contents
// inside one transaction, so a failed seed never leaves a partial table.
func (s *SQLSource) replaceTable(ctx context.Context, table string, recs []snapshot.Record) error {
	if err := s.db.WithContext(ctx).Table(table).AutoMigrate(&sqlRow{}); err != nil {
		return fmt.Errorf("migrate table %q: %w", table, err)
	}

	rows := make([]sqlRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, sqlRow{
			Identity:  rec.Identity,
			UpdatedAt: snapshot.FormatTimestamp(rec.Timestamp),
			Payload:   rec.Payload,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Where("1 = 1").Delete(&sqlRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Table(table).CreateInBatches(rows, createBatchSize).Error
	})
}
