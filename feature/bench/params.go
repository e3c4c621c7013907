package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sync strategies. The names are the benchmark's public vocabulary and
// appear verbatim in metrics rows and parameter files.
const (
	StrategyFullRefresh = "Full Refresh"
	StrategyFullCompare = "Full Compare"
	StrategyIncremental = "Incremental"
)

// Anomaly policies for Full Compare runs.
const (
	// AnomalyPolicyLog counts and logs anomalies without touching them.
	AnomalyPolicyLog = "log"
	// AnomalyPolicyRepair additionally emits a correcting update event
	// that reasserts the source record.
	AnomalyPolicyRepair = "repair"
)

// Source and destination backing types.
const (
	SourceTypeParquet = "parquet"
	SourceTypeSQL     = "sql"

	DestinationTypeDelta     = "delta"
	DestinationTypeWarehouse = "warehouse"
)

// ParameterSet describes one benchmark scenario: how much synthetic data
// to seed, how it drifts, and which strategy syncs it.
type ParameterSet struct {
	// Name labels the scenario in metrics and logs.
	Name string `yaml:"name" json:"name"`

	// RowCount is the size of the seeded destination state.
	RowCount int `yaml:"row_count" json:"row_count"`

	SourceType      string `yaml:"source_type" json:"source_type"`
	DestinationType string `yaml:"destination_type" json:"destination_type"`

	// UpdateStrategy is one of the Strategy constants.
	UpdateStrategy string `yaml:"update_strategy" json:"update_strategy"`

	// ChangeFraction of rows receive a newer source timestamp.
	ChangeFraction float64 `yaml:"change_fraction" json:"change_fraction"`
	// NewFraction of RowCount extra rows exist only in the source.
	NewFraction float64 `yaml:"new_fraction" json:"new_fraction"`
	// DeleteFraction of rows are absent from the source.
	DeleteFraction float64 `yaml:"delete_fraction" json:"delete_fraction"`

	// Seed makes the synthetic dataset reproducible.
	Seed int64 `yaml:"seed" json:"seed"`

	// IsColdRun marks runs executed before any cache warmup.
	IsColdRun bool `yaml:"is_cold_run" json:"is_cold_run"`

	// AnomalyPolicy is "log" (default) or "repair".
	AnomalyPolicy string `yaml:"anomaly_policy" json:"anomaly_policy"`
}

// Validate checks ranges and enumerations, applying defaults in place.
func (p *ParameterSet) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter set: name is required")
	}
	if p.RowCount <= 0 {
		return fmt.Errorf("parameter set %q: row_count must be positive", p.Name)
	}

	switch p.SourceType {
	case SourceTypeParquet, SourceTypeSQL:
	default:
		return fmt.Errorf("parameter set %q: unknown source_type %q", p.Name, p.SourceType)
	}
	switch p.DestinationType {
	case DestinationTypeDelta, DestinationTypeWarehouse:
	default:
		return fmt.Errorf("parameter set %q: unknown destination_type %q", p.Name, p.DestinationType)
	}
	switch p.UpdateStrategy {
	case StrategyFullRefresh, StrategyFullCompare, StrategyIncremental:
	default:
		return fmt.Errorf("parameter set %q: unknown update_strategy %q", p.Name, p.UpdateStrategy)
	}

	if p.ChangeFraction <= 0 || p.ChangeFraction >= 1 {
		return fmt.Errorf("parameter set %q: change_fraction must be in (0, 1)", p.Name)
	}
	if p.NewFraction < 0 || p.NewFraction >= 1 {
		return fmt.Errorf("parameter set %q: new_fraction must be in [0, 1)", p.Name)
	}
	if p.DeleteFraction < 0 || p.DeleteFraction >= 1 {
		return fmt.Errorf("parameter set %q: delete_fraction must be in [0, 1)", p.Name)
	}
	if p.ChangeFraction+p.DeleteFraction > 1 {
		return fmt.Errorf("parameter set %q: change_fraction + delete_fraction must not exceed 1", p.Name)
	}

	if p.AnomalyPolicy == "" {
		p.AnomalyPolicy = AnomalyPolicyLog
	}
	switch p.AnomalyPolicy {
	case AnomalyPolicyLog, AnomalyPolicyRepair:
	default:
		return fmt.Errorf("parameter set %q: unknown anomaly_policy %q", p.Name, p.AnomalyPolicy)
	}

	return nil
}

// paramsFile is the YAML document shape of a parameter file.
type paramsFile struct {
	ParameterSets []ParameterSet `yaml:"parameter_sets"`
}

// LoadParameterSets reads and validates a YAML parameter file.
func LoadParameterSets(path string) ([]ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}

	var file paramsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse parameter file %q: %w", path, err)
	}
	if len(file.ParameterSets) == 0 {
		return nil, fmt.Errorf("parameter file %q contains no parameter_sets", path)
	}

	seen := make(map[string]struct{}, len(file.ParameterSets))
	for i := range file.ParameterSets {
		if err := file.ParameterSets[i].Validate(); err != nil {
			return nil, err
		}
		name := file.ParameterSets[i].Name
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("parameter file %q: duplicate set name %q", path, name)
		}
		seen[name] = struct{}{}
	}
	return file.ParameterSets, nil
}
