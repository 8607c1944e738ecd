// Package goSession is the client session and access-control core of a
// storefront: a durable authentication session, a route guard that reads it,
// and a count-based busy signal for in-flight operations.
//
// Everything hangs off one [Engine], built once through [Builder.Build] and
// passed to the code that needs it. There are no package-level globals. Engine
// methods are safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config] and
// value types (Snapshot, Decision, Handle, MetricsSnapshot). Persistence lives
// in package session, decisions in package access, counting in package
// activity; the engine adds metrics, audit events and structured logging
// around them.
//
// # What this package must NOT do
//
//   - Perform HTTP calls on behalf of the application (it only tracks them).
//   - Render UI or perform redirects itself (see package middleware).
//   - Mutate the activity count or the persisted keys outside the owning
//     components.
package goSession
