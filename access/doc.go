// Package access decides whether a navigation to a protected destination is
// allowed, and where to send the user when it is not.
//
// # Decision order
//
//  1. A requirement that needs authentication and an unauthenticated subject
//     redirects to the login destination.
//  2. A role requirement whose role is absent from the subject, or differs,
//     redirects to the home destination.
//  3. Everything else is allowed.
//
// A subject with a token but no profile is authenticated with an unknown role,
// so role checks fail closed.
//
// # Architecture boundaries
//
// [Decide] is a pure function. [Roles] and [Routes] are startup-time
// registries that validate requirements before any request is served, and
// are frozen afterwards.
//
// # What this package must NOT do
//
//   - Read or write session storage (it consumes a [Subject] only).
//   - Perform redirects itself (see package middleware).
//   - Cache decisions across navigations.
package access
