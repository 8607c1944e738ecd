// Package audit delivers session and access events to sinks off the caller's
// goroutine.
//
// # Components
//
//   - [Sink] receives events (channel, JSON lines, zap, fan-out, no-op).
//   - [Dispatcher] is a buffered relay that either drops or blocks when full.
//   - [Event] is the structured record.
//
// # What this package must NOT do
//
//   - Decide which events exist; the engine does that.
//   - Import goSession or any sibling package.
package audit
