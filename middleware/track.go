package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Track counts each request as one tracked operation for its whole lifetime,
// including requests the client abandons.
func Track(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lease := engine.Acquire()
			if lease == nil {
				next.ServeHTTP(w, r)
				return
			}
			lease.ReleaseOnDone(r.Context())
			defer lease.Release()

			next.ServeHTTP(w, r)
		})
	}
}
