// Package activity counts in-flight tracked operations and exposes the
// process-wide busy signal derived from that count.
//
// The coordinator is count based: overlapping operations each hold a
// [Handle], and the signal drops only when the last outstanding handle ends.
// Ending a handle twice, or ending one the coordinator never issued, is
// rejected with [ErrHandleNotOutstanding] and leaves the count untouched.
//
// [Coordinator.Track] and [Lease] implement scoped acquisition: the release
// runs on every exit path, including panics and context cancellation.
package activity
