package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	p := validParams() // 100 rows, 20% changed, 10% new, 10% deleted

	ds, err := Generate(p)
	require.NoError(t, err)

	assert.Len(t, ds.DestRows, 100)
	// 100 - 10 deleted + 10 new.
	assert.Len(t, ds.SourceRows, 100)
	// 20 changed + 10 new.
	assert.Len(t, ds.UpdateRows, 30)
}

func TestGenerate_Deterministic(t *testing.T) {
	p := validParams()

	a, err := Generate(p)
	require.NoError(t, err)
	b, err := Generate(p)
	require.NoError(t, err)

	assert.Equal(t, a.DestRows, b.DestRows)
	assert.Equal(t, a.SourceRows, b.SourceRows)
	assert.Equal(t, a.UpdateRows, b.UpdateRows)
}

func TestGenerate_SeedChangesData(t *testing.T) {
	p := validParams()
	a, err := Generate(p)
	require.NoError(t, err)

	p.Seed = 43
	b, err := Generate(p)
	require.NoError(t, err)

	assert.NotEqual(t, a.DestRows, b.DestRows)
}

func TestGenerate_DriftSemantics(t *testing.T) {
	p := validParams()
	ds, err := Generate(p)
	require.NoError(t, err)

	destByID := make(map[string]int, len(ds.DestRows))
	for i, rec := range ds.DestRows {
		destByID[rec.Identity] = i
	}

	var changed, created int
	for _, rec := range ds.SourceRows {
		di, inDest := destByID[rec.Identity]
		if !inDest {
			created++
			continue
		}
		destRec := ds.DestRows[di]
		if rec.Timestamp.After(destRec.Timestamp) {
			changed++
		} else {
			// Unchanged rows must be exactly equal, or Full Compare
			// would misclassify them.
			assert.Equal(t, destRec, rec)
		}
	}
	assert.Equal(t, 20, changed)
	assert.Equal(t, 10, created)

	// Deleted rows exist only in dest.
	sourceIDs := make(map[string]struct{}, len(ds.SourceRows))
	for _, rec := range ds.SourceRows {
		sourceIDs[rec.Identity] = struct{}{}
	}
	var deleted int
	for _, rec := range ds.DestRows {
		if _, ok := sourceIDs[rec.Identity]; !ok {
			deleted++
		}
	}
	assert.Equal(t, 10, deleted)

	// Update rows are exactly the changed and created source rows.
	for _, rec := range ds.UpdateRows {
		di, inDest := destByID[rec.Identity]
		if inDest {
			assert.True(t, rec.Timestamp.After(ds.DestRows[di].Timestamp))
		}
	}
}

func TestGenerate_InvalidParams(t *testing.T) {
	p := validParams()
	p.RowCount = -1

	_, err := Generate(p)
	assert.Error(t, err)
}
