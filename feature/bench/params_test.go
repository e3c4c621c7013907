package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() ParameterSet {
	return ParameterSet{
		Name:            "baseline",
		RowCount:        100,
		SourceType:      SourceTypeParquet,
		DestinationType: DestinationTypeDelta,
		UpdateStrategy:  StrategyFullCompare,
		ChangeFraction:  0.2,
		NewFraction:     0.1,
		DeleteFraction:  0.1,
		Seed:            42,
	}
}

func TestParameterSet_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := validParams()
		require.NoError(t, p.Validate())
		// Default applied.
		assert.Equal(t, AnomalyPolicyLog, p.AnomalyPolicy)
	})

	tests := []struct {
		name   string
		mutate func(*ParameterSet)
	}{
		{"Missing Name", func(p *ParameterSet) { p.Name = "" }},
		{"Zero Rows", func(p *ParameterSet) { p.RowCount = 0 }},
		{"Unknown Source", func(p *ParameterSet) { p.SourceType = "csv" }},
		{"Unknown Destination", func(p *ParameterSet) { p.DestinationType = "iceberg" }},
		{"Unknown Strategy", func(p *ParameterSet) { p.UpdateStrategy = "Upsert" }},
		{"Change Zero", func(p *ParameterSet) { p.ChangeFraction = 0 }},
		{"Change One", func(p *ParameterSet) { p.ChangeFraction = 1 }},
		{"New Negative", func(p *ParameterSet) { p.NewFraction = -0.1 }},
		{"New One", func(p *ParameterSet) { p.NewFraction = 1 }},
		{"Delete One", func(p *ParameterSet) { p.DeleteFraction = 1 }},
		{"Change Plus Delete Overflow", func(p *ParameterSet) {
			p.ChangeFraction = 0.7
			p.DeleteFraction = 0.5
		}},
		{"Unknown Anomaly Policy", func(p *ParameterSet) { p.AnomalyPolicy = "ignore" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestLoadParameterSets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yml")

	content := `
parameter_sets:
  - name: small-compare
    row_count: 1000
    source_type: parquet
    destination_type: delta
    update_strategy: Full Compare
    change_fraction: 0.2
    new_fraction: 0.05
    delete_fraction: 0.05
    seed: 1
  - name: small-incremental
    row_count: 1000
    source_type: sql
    destination_type: warehouse
    update_strategy: Incremental
    change_fraction: 0.2
    new_fraction: 0.05
    delete_fraction: 0.05
    seed: 2
    is_cold_run: true
    anomaly_policy: repair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sets, err := LoadParameterSets(path)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	assert.Equal(t, "small-compare", sets[0].Name)
	assert.Equal(t, StrategyFullCompare, sets[0].UpdateStrategy)
	assert.Equal(t, AnomalyPolicyLog, sets[0].AnomalyPolicy)

	assert.Equal(t, StrategyIncremental, sets[1].UpdateStrategy)
	assert.True(t, sets[1].IsColdRun)
	assert.Equal(t, AnomalyPolicyRepair, sets[1].AnomalyPolicy)
}

func TestLoadParameterSets_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadParameterSets(filepath.Join(dir, "absent.yml"))
		assert.Error(t, err)
	})

	t.Run("Empty Document", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yml")
		require.NoError(t, os.WriteFile(path, []byte("parameter_sets: []\n"), 0o644))
		_, err := LoadParameterSets(path)
		assert.Error(t, err)
	})

	t.Run("Duplicate Names", func(t *testing.T) {
		path := filepath.Join(dir, "dup.yml")
		content := `
parameter_sets:
  - name: same
    row_count: 10
    source_type: parquet
    destination_type: delta
    update_strategy: Full Refresh
    change_fraction: 0.1
    seed: 1
  - name: same
    row_count: 10
    source_type: parquet
    destination_type: delta
    update_strategy: Full Refresh
    change_fraction: 0.1
    seed: 2
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadParameterSets(path)
		assert.ErrorContains(t, err, "duplicate")
	})
}
