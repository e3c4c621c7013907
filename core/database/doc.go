// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// configure MySQL and SQLite connections based on the application's
// configuration. MySQL backs the warehouse destination and the metrics
// sink in real deployments; SQLite backs local benchmarking and tests.
//
// # Connect
//
// The generic Connect function establishes a connection for the configured
// driver. It is agnostic to the table layout; schema concerns live with the
// source and destination implementations.
//
// # Schema Inspection
//
// The package includes tools to inspect table schemas. The warehouse event
// writer uses them to verify that the event-log table carries exactly the
// expected columns before appending, because silent type coercion at the
// write layer is disallowed.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "sync_events")
package database
