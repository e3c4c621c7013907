// Package bench orchestrates benchmark runs comparing three sync
// strategies over the same synthetic dataset:
//
//   - Full Refresh: read the source's full state, overwrite the destination.
//   - Full Compare: read both sides, reconcile by timestamp, append the
//     classified event batch to the destination's log.
//   - Incremental: blindly append the source's update slice, reading
//     nothing back.
//
// A ParameterSet describes one scenario (size, drift fractions, backings,
// strategy, seed); Generate derives its deterministic dataset; a Runner
// materializes the data, executes the strategy inside a metrics scope, and
// flushes exactly one benchmark row per run. The Service fans parameter
// sets out with bounded concurrency, and the Feature exposes everything
// over HTTP.
package bench
