// Package source provides the systems of record a benchmark run reads from.
//
// Two backings are supported:
//   - Parquet objects in S3/MinIO (ParquetSource), sharing the ParquetStore
//     codec with the delta destination.
//   - Relational tables via GORM (SQLSource).
//
// Every source yields immutable snapshots through the core/snapshot types,
// so the reconciliation engine never sees storage specifics. Both backings
// also implement Materializer so the benchmark can seed them with synthetic
// data before timing starts.
package source
