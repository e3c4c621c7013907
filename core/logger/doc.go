// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Context Awareness
//
// Benchmark runs are correlated through run IDs: WithRunID attaches the
// run_id field so that every log line of one strategy execution can be
// matched with its MetricsRow. WithRequestID does the same for HTTP
// requests handled by the Fiber server.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// Inside a run:
//	l := logger.WithRunID(log, run.ID)
//	l.Info("strategy completed")
package logger
