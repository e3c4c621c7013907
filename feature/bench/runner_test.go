package bench

import (
	"context"
	"sync"
	"testing"
	"time"

	"syncbench/core/metrics"
	"syncbench/core/snapshot"
	"syncbench/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"syncbench/feature/dest"
	"syncbench/feature/source"
)

// captureSink collects flushed metrics rows for assertions.
type captureSink struct {
	mu   sync.Mutex
	rows []metrics.Row
}

func (s *captureSink) Flush(ctx context.Context, row *metrics.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *row)
	return nil
}

func (s *captureSink) byController(name string) (metrics.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ControllerName == name {
			return row, true
		}
	}
	return metrics.Row{}, false
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestRunner_FullRefresh(t *testing.T) {
	db := newSQLiteDB(t)
	sink := &captureSink{}
	recorder := metrics.NewRecorder(sink, zap.NewNop())

	p := validParams()
	p.SourceType = SourceTypeSQL
	p.DestinationType = DestinationTypeWarehouse
	p.UpdateStrategy = StrategyFullRefresh

	ds, err := Generate(p)
	require.NoError(t, err)

	src := source.NewSQLSource(db, "src_current", "src_updates")
	d := dest.NewWarehouseDestination(db, "dest_current", "sync_events")
	require.NoError(t, d.EnsureTables(context.Background()))

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	require.NoError(t, runner.Materialize(context.Background(), ds))

	row, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, runner.State())

	// Destination now mirrors the source exactly.
	snap, err := d.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(ds.SourceRows), snap.Len())

	assert.Equal(t, int64(len(ds.SourceRows)), row.RowsRead)
	assert.Equal(t, int64(len(ds.SourceRows)), row.RowsWritten)
	assert.Equal(t, metrics.StatusCompleted, row.Status)

	// Materialization flushed its own excluded row.
	matRow, ok := sink.byController("materialize")
	require.True(t, ok)
	assert.True(t, matRow.ExcludedFromBenchmark)

	runRow, ok := sink.byController("runner")
	require.True(t, ok)
	assert.False(t, runRow.ExcludedFromBenchmark)
	assert.Equal(t, runner.RunID(), runRow.RunID)
}

func TestRunner_FullCompare(t *testing.T) {
	client := mocks.NewMemClient()
	store := source.NewParquetStore(client, "syncbench")
	sink := &captureSink{}
	recorder := metrics.NewRecorder(sink, zap.NewNop())

	p := validParams() // parquet -> delta, Full Compare
	ds, err := Generate(p)
	require.NoError(t, err)

	src := source.NewParquetSource(store, "sources/t/current.parquet", "sources/t/updates.parquet")
	d := dest.NewDeltaDestination(store, client, "dests/t")

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	require.NoError(t, runner.Materialize(context.Background(), ds))

	row, err := runner.Run(context.Background())
	require.NoError(t, err)

	// 100 rows, 20% changed, 10% new, 10% deleted, no anomalies.
	assert.Equal(t, int64(10), row.RowsInserted)
	assert.Equal(t, int64(20), row.RowsUpdated)
	assert.Equal(t, int64(10), row.RowsDeleted)
	assert.Equal(t, int64(0), row.AnomalyCount)

	// rows_read equals the classified count, so the union invariant holds.
	assert.Equal(t, row.RowsRead,
		row.RowsInserted+row.RowsUpdated+row.RowsDeleted+row.AnomalyCount)
	assert.Equal(t, int64(40), row.RowsWritten)

	// Exactly one commit object landed in the log.
	var logObjects int
	for _, obj := range client.Objects() {
		if len(obj) > len("dests/t/_log/") && obj[:len("dests/t/_log/")] == "dests/t/_log/" {
			logObjects++
		}
	}
	assert.Equal(t, 1, logObjects)
}

func TestRunner_Incremental(t *testing.T) {
	db := newSQLiteDB(t)
	sink := &captureSink{}
	recorder := metrics.NewRecorder(sink, zap.NewNop())

	p := validParams()
	p.SourceType = SourceTypeSQL
	p.DestinationType = DestinationTypeWarehouse
	p.UpdateStrategy = StrategyIncremental

	ds, err := Generate(p)
	require.NoError(t, err)

	src := source.NewSQLSource(db, "src_current", "src_updates")
	d := dest.NewWarehouseDestination(db, "dest_current", "sync_events")
	require.NoError(t, d.EnsureTables(context.Background()))

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	require.NoError(t, runner.Materialize(context.Background(), ds))

	row, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Blind append: 100 seeded + 30 update rows, duplicates included.
	var count int64
	require.NoError(t, db.Table("dest_current").Count(&count).Error)
	assert.Equal(t, int64(130), count)

	assert.Equal(t, int64(30), row.RowsRead)
	assert.Equal(t, int64(30), row.RowsWritten)
	assert.Equal(t, int64(30), row.RowsInserted)
}

func TestRunner_RepairPolicy(t *testing.T) {
	db := newSQLiteDB(t)
	sink := &captureSink{}
	recorder := metrics.NewRecorder(sink, zap.NewNop())

	p := validParams()
	p.SourceType = SourceTypeSQL
	p.DestinationType = DestinationTypeWarehouse
	p.AnomalyPolicy = AnomalyPolicyRepair

	src := source.NewSQLSource(db, "src_current", "src_updates")
	d := dest.NewWarehouseDestination(db, "dest_current", "sync_events")
	require.NoError(t, d.EnsureTables(context.Background()))

	// The destination holds a newer record than the source: an anomaly.
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	require.NoError(t, src.WriteCurrent(context.Background(),
		[]snapshot.Record{{Identity: "x", Timestamp: older, Payload: "src"}}))
	require.NoError(t, src.WriteUpdates(context.Background(), nil))
	require.NoError(t, d.Overwrite(context.Background(),
		[]snapshot.Record{{Identity: "x", Timestamp: newer, Payload: "dst"}}))

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	row, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), row.AnomalyCount)
	assert.Equal(t, int64(1), row.RowsRead)
	// Anomaly event plus its correcting update.
	assert.Equal(t, int64(2), row.RowsWritten)

	var events []dest.EventRow
	require.NoError(t, db.Table("sync_events").Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, "anomaly", events[0].UpdateType)
	assert.Equal(t, "update", events[1].UpdateType)
	assert.Equal(t, events[0].Identity, events[1].Identity)
	assert.Equal(t, runner.RunID(), events[0].RunID)
}

func TestRunner_SingleUse(t *testing.T) {
	client := mocks.NewMemClient()
	store := source.NewParquetStore(client, "syncbench")
	recorder := metrics.NewRecorder(&captureSink{}, zap.NewNop())

	p := validParams()
	ds, err := Generate(p)
	require.NoError(t, err)

	src := source.NewParquetSource(store, "sources/t/current.parquet", "sources/t/updates.parquet")
	d := dest.NewDeltaDestination(store, client, "dests/t")

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	require.NoError(t, runner.Materialize(context.Background(), ds))

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateCompleted, runner.State())
}

func TestRunner_FailureFlushesFailedRow(t *testing.T) {
	db := newSQLiteDB(t)
	sink := &captureSink{}
	recorder := metrics.NewRecorder(sink, zap.NewNop())

	p := validParams()
	p.SourceType = SourceTypeSQL
	p.DestinationType = DestinationTypeWarehouse

	ds, err := Generate(p)
	require.NoError(t, err)

	src := source.NewSQLSource(db, "src_current", "src_updates")
	require.NoError(t, src.WriteCurrent(context.Background(), ds.SourceRows))
	require.NoError(t, src.WriteUpdates(context.Background(), ds.UpdateRows))

	// Event table exists but lacks the event columns.
	require.NoError(t, db.Exec("CREATE TABLE sync_events (id INTEGER PRIMARY KEY, note TEXT)").Error)
	require.NoError(t, db.Exec("CREATE TABLE dest_current (id INTEGER PRIMARY KEY, identity TEXT, updated_at TEXT, payload TEXT)").Error)
	d := dest.NewWarehouseDestination(db, "dest_current", "sync_events")

	runner := NewRunner(p, src, src, d, recorder, zap.NewNop())
	_, err = runner.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateFailed, runner.State())

	row, ok := sink.byController("runner")
	require.True(t, ok)
	assert.Equal(t, metrics.StatusFailed, row.Status)
	assert.Equal(t, "schema_mismatch", row.ErrorCode)
}
