package dest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"syncbench/core/reconcile"
	"syncbench/core/snapshot"
	"syncbench/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncbench/feature/source"
)

func testRecords(n int) []snapshot.Record {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := make([]snapshot.Record, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, snapshot.Record{
			Identity:  string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Payload:   "payload",
		})
	}
	return recs
}

func stampedEvents(n int, runID string) []reconcile.Event {
	recs := testRecords(n)
	events := make([]reconcile.Event, 0, n)
	for i := range recs {
		events = append(events, reconcile.Event{
			Identity:     recs[i].Identity,
			UpdateType:   reconcile.UpdateTypeInsert,
			SourceRecord: &recs[i],
		})
	}
	reconcile.Stamp(events, runID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	return events
}

func newDelta(t *testing.T) (*DeltaDestination, *mocks.MemClient) {
	t.Helper()
	client := mocks.NewMemClient()
	store := source.NewParquetStore(client, "syncbench")
	return NewDeltaDestination(store, client, "dest/alpha"), client
}

func TestDeltaDestination_CurrentBeforeFirstWrite(t *testing.T) {
	d, _ := newDelta(t)

	snap, err := d.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestDeltaDestination_OverwriteReplaces(t *testing.T) {
	d, _ := newDelta(t)

	require.NoError(t, d.Overwrite(context.Background(), testRecords(5)))
	require.NoError(t, d.Overwrite(context.Background(), testRecords(2)))

	snap, err := d.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "delta", d.Type())
}

func TestDeltaDestination_AppendRecordsIsBlind(t *testing.T) {
	d, _ := newDelta(t)
	store := d.store

	require.NoError(t, d.AppendRecords(context.Background(), testRecords(3)))
	require.NoError(t, d.AppendRecords(context.Background(), testRecords(3)))

	// Raw rows double: blind append never dedups.
	raw, err := store.ReadRecords(context.Background(), "dest/alpha/current.parquet")
	require.NoError(t, err)
	assert.Len(t, raw, 6)

	// Reading as a snapshot now surfaces the drift.
	_, err = d.Current(context.Background())
	var dupErr *snapshot.DuplicateIdentityError
	assert.ErrorAs(t, err, &dupErr)
}

func TestDeltaDestination_AppendEventsCommitsOneObject(t *testing.T) {
	d, client := newDelta(t)

	require.NoError(t, d.AppendEvents(context.Background(), stampedEvents(3, "run-1")))
	require.NoError(t, d.AppendEvents(context.Background(), stampedEvents(2, "run-2")))

	objects := client.Objects()
	sort.Strings(objects)
	require.Len(t, objects, 2)
	assert.Equal(t, "dest/alpha/_log/00000000000000000000-run-1.json", objects[0])
	assert.Equal(t, "dest/alpha/_log/00000000000000000001-run-2.json", objects[1])

	// Each commit object is decodable JSON lines.
	data, ok := client.Data(objects[0])
	require.True(t, ok)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var decoded []reconcile.Event
	for scanner.Scan() {
		var ev reconcile.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		decoded = append(decoded, ev)
	}
	require.Len(t, decoded, 3)
	assert.Equal(t, "run-1", decoded[0].RunID)
	assert.Equal(t, reconcile.UpdateTypeInsert, decoded[0].UpdateType)
}

func TestDeltaDestination_AppendEventsRejectsUnstamped(t *testing.T) {
	d, client := newDelta(t)

	events := stampedEvents(1, "run-1")
	events[0].RunID = ""

	err := d.AppendEvents(context.Background(), events)

	var violation *reconcile.InvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Empty(t, client.Objects())
}

func TestDeltaDestination_AppendEventsEmptyBatch(t *testing.T) {
	d, client := newDelta(t)

	require.NoError(t, d.AppendEvents(context.Background(), nil))
	assert.Empty(t, client.Objects())
}
