// Package session owns the durable client session: the signed-in profile, the opaque
// bearer token and the derived authenticated flag.
//
// # Persistence
//
// A [Store] keeps the session in memory and mirrors it into a [Backend] under two
// independent keys (by default "user" for the JSON profile and "token" for the raw
// credential). [Store.Load] rehydrates both keys at startup; a missing, null or
// malformed profile never aborts startup and is reported through [LoadReport].
//
// # Invariants
//
//   - Authenticated is derived from token presence and is never stored.
//   - [Store.Snapshot] never observes a half-applied [Store.Establish].
//   - Profile maps held by the store are replaced on every mutation, never edited in place.
//
// # What this package must NOT do
//
//   - Interpret the token (it is opaque here; see package jwt for optional inspection).
//   - Make authorization decisions (see package access).
package session
