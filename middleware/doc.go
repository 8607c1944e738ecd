// Package middleware exposes HTTP adapters over a goSession.Engine: route
// guards that perform the access redirect, and a tracker that counts each
// request as one in-flight operation.
//
// # Guards
//
//   - [Guard] evaluates a fixed requirement.
//   - [RequireAuth] and [RequireRole] are shorthands for the common cases.
//   - [Routes] looks the requirement up in the engine's route table.
//
// Allowed requests carry the evaluated session; read it with
// [SnapshotFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Decisions are
// made by the engine; the middleware only redirects.
//
// # What this package must NOT do
//
//   - Read or write the persisted session.
//   - Make access decisions beyond what Engine.Evaluate returns.
package middleware
