// Package prometheus renders goSession metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] reads a [goSession.Engine] on every scrape. Counter
// names are prefixed gosession_*_total; the duration histogram is
// gosession_activity_duration_seconds and the busy count is exposed as the
// gosession_activity_in_flight gauge.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
