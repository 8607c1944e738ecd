// Package jwt reads and issues session tokens that happen to be JWTs.
//
// The session core treats tokens as opaque; this package is an optional
// lens for applications whose backend issues signed JWTs. [Manager.Parse]
// verifies signature and registered claims, [Inspect] only decodes.
package jwt
