// Package otel binds goSession metrics to OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter,
// one Int64ObservableGauge per histogram bucket and one gauge for in-flight
// operations. A single callback reads the engine on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
