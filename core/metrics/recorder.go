package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Recorder wraps strategy executions with scoped metrics acquisition.
// One Scope is begun at the strategy's declared timer boundary and is
// guaranteed to be finalized and flushed on every exit path.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder flushing to the given sink.
func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Scope is one in-flight metrics row. It is single-use and not safe for
// concurrent use; each run owns exactly one Scope.
type Scope struct {
	rec       *Recorder
	row       Row
	finalized bool
}

// Begin opens a scope and starts its timer. The caller supplies the
// dimensional fields (run id, strategy, types, cold flag, seed) on base;
// timing and status fields are owned by the scope.
func (r *Recorder) Begin(base Row) *Scope {
	base.StartTS = r.now().UTC()
	base.Status = ""
	base.ErrorCode = ""
	return &Scope{rec: r, row: base}
}

// Row gives the caller access to the in-flight row for counter updates.
func (s *Scope) Row() *Row { return &s.row }

// Complete stops the timer, marks the row completed and flushes it.
func (s *Scope) Complete(ctx context.Context) error {
	return s.finalize(ctx, StatusCompleted, "")
}

// Fail stops the timer at the failure time, marks the row failed with the
// error's code and flushes it. Partial rows are accounted for, never
// discarded.
func (s *Scope) Fail(ctx context.Context, cause error) error {
	return s.finalize(ctx, StatusFailed, CodeOf(cause))
}

func (s *Scope) finalize(ctx context.Context, status, errorCode string) error {
	if s.finalized {
		return nil
	}
	s.finalized = true

	s.row.EndTS = s.rec.now().UTC()
	s.row.DurationS = s.row.EndTS.Sub(s.row.StartTS).Seconds()
	s.row.Status = status
	s.row.ErrorCode = errorCode

	observeRun(&s.row)

	// A cancelled run must still flush its row; detach from the caller's
	// cancellation while keeping its values.
	flushCtx := context.WithoutCancel(ctx)
	if err := s.rec.sink.Flush(flushCtx, &s.row); err != nil {
		s.rec.logger.Error("failed to flush metrics row",
			zap.String("run_id", s.row.RunID),
			zap.String("strategy", s.row.Strategy),
			zap.Error(err),
		)
		return err
	}

	s.rec.logger.Info("metrics row flushed",
		zap.String("run_id", s.row.RunID),
		zap.String("strategy", s.row.Strategy),
		zap.String("status", status),
		zap.Float64("duration_s", s.row.DurationS),
		zap.Int64("rows_read", s.row.RowsRead),
		zap.Int64("rows_written", s.row.RowsWritten),
		zap.Int64("anomalies", s.row.AnomalyCount),
		zap.Bool("excluded", s.row.ExcludedFromBenchmark),
	)
	return nil
}
