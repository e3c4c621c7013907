package bench

import (
	"context"
	"strings"

	"syncbench/core/metrics"
	"syncbench/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"syncbench/feature/dest"
	"syncbench/feature/source"
)

// Report summarizes one executed parameter set for API responses and CLI
// output. The durable record is the metrics row; this is a projection.
type Report struct {
	Set          string  `json:"set"`
	RunID        string  `json:"run_id"`
	Strategy     string  `json:"strategy"`
	Status       string  `json:"status"`
	DurationS    float64 `json:"duration_s"`
	RowsRead     int64   `json:"rows_read"`
	RowsWritten  int64   `json:"rows_written"`
	AnomalyCount int64   `json:"anomaly_count"`
	ErrorCode    string  `json:"error_code,omitempty"`
}

// Service executes parameter sets end to end: generate, materialize, run.
type Service struct {
	db          *gorm.DB
	client      storage.Client
	store       *source.ParquetStore
	recorder    *metrics.Recorder
	logger      *zap.Logger
	concurrency int
}

// NewService wires the benchmark service. concurrency bounds how many
// parameter sets execute at once in ExecuteAll.
func NewService(db *gorm.DB, client storage.Client, bucket string, recorder *metrics.Recorder, logger *zap.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		db:          db,
		client:      client,
		store:       source.NewParquetStore(client, bucket),
		recorder:    recorder,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ExecuteSet runs one parameter set through its full lifecycle. The
// returned report is populated even when the run failed.
func (s *Service) ExecuteSet(ctx context.Context, p ParameterSet) (*Report, error) {
	ds, err := Generate(p)
	if err != nil {
		return nil, err
	}

	src, mat, err := s.buildSource(p)
	if err != nil {
		return nil, err
	}
	dst, err := s.buildDestination(ctx, p)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(p, src, mat, dst, s.recorder, s.logger)

	if err := runner.Materialize(ctx, ds); err != nil {
		return &Report{Set: p.Name, RunID: runner.RunID(), Strategy: p.UpdateStrategy,
			Status: metrics.StatusFailed, ErrorCode: metrics.CodeOf(err)}, err
	}

	row, err := runner.Run(ctx)
	report := &Report{
		Set:          p.Name,
		RunID:        runner.RunID(),
		Strategy:     p.UpdateStrategy,
		Status:       row.Status,
		DurationS:    row.DurationS,
		RowsRead:     row.RowsRead,
		RowsWritten:  row.RowsWritten,
		AnomalyCount: row.AnomalyCount,
		ErrorCode:    row.ErrorCode,
	}
	return report, err
}

// ExecuteAll runs every parameter set, at most concurrency at a time.
// A failed set does not stop the others; the first error is returned
// after all sets finish, alongside every report.
func (s *Service) ExecuteAll(ctx context.Context, sets []ParameterSet) ([]Report, error) {
	reports := make([]Report, len(sets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range sets {
		g.Go(func() error {
			rep, err := s.ExecuteSet(ctx, sets[i])
			if rep != nil {
				reports[i] = *rep
			} else {
				reports[i] = Report{Set: sets[i].Name, Status: metrics.StatusFailed,
					ErrorCode: metrics.CodeOf(err)}
			}
			return err
		})
	}

	err := g.Wait()
	return reports, err
}

// MaterializeSet seeds a parameter set's source and destination without
// running its strategy. Used by the generate command to prepare data for
// later, separately timed runs.
func (s *Service) MaterializeSet(ctx context.Context, p ParameterSet) (string, error) {
	ds, err := Generate(p)
	if err != nil {
		return "", err
	}
	src, mat, err := s.buildSource(p)
	if err != nil {
		return "", err
	}
	dst, err := s.buildDestination(ctx, p)
	if err != nil {
		return "", err
	}

	runner := NewRunner(p, src, mat, dst, s.recorder, s.logger)
	return runner.RunID(), runner.Materialize(ctx, ds)
}

// buildSource constructs the parameter set's system of record. Each set
// gets its own object prefix or table pair so concurrent sets never
// share state.
func (s *Service) buildSource(p ParameterSet) (source.Source, source.Materializer, error) {
	slug := sanitizeName(p.Name)
	switch p.SourceType {
	case SourceTypeParquet:
		src := source.NewParquetSource(s.store,
			"sources/"+slug+"/current.parquet",
			"sources/"+slug+"/updates.parquet")
		return src, src, nil
	default: // validated earlier; only sql remains
		src := source.NewSQLSource(s.db, "src_"+slug+"_current", "src_"+slug+"_updates")
		return src, src, nil
	}
}

func (s *Service) buildDestination(ctx context.Context, p ParameterSet) (dest.Destination, error) {
	slug := sanitizeName(p.Name)
	switch p.DestinationType {
	case DestinationTypeDelta:
		return dest.NewDeltaDestination(s.store, s.client, "dests/"+slug), nil
	default: // validated earlier; only warehouse remains
		d := dest.NewWarehouseDestination(s.db, "dest_"+slug+"_current", "sync_events_"+slug)
		if err := d.EnsureTables(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}

// sanitizeName maps a set name onto something safe for table names and
// object prefixes.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
