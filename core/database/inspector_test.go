package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE sync_events (id INTEGER PRIMARY KEY, identity TEXT, update_type TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "sync_events")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["identity"])
	assert.Equal(t, "text", colMap["update_type"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasColumns(t *testing.T) {
	cfg := Config{Driver: "sqlite", Name: ":memory:"}
	db, err := Connect(cfg)
	assert.NoError(t, err)

	err = db.Exec("CREATE TABLE dest_current (identity TEXT, updated_at TEXT, payload TEXT)").Error
	assert.NoError(t, err)

	ok, missing, err := HasColumns(db, "dest_current", []string{"identity", "updated_at", "payload"})
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, missing)

	ok, missing, err = HasColumns(db, "dest_current", []string{"identity", "emitted_at"})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"emitted_at"}, missing)
}
