package middleware

import (
	"context"
	"net"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

type snapshotContextKey struct{}

// SnapshotFromContext returns the session snapshot taken when a guard admitted
// this request.
func SnapshotFromContext(ctx context.Context) (goSession.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(goSession.Snapshot)
	return snap, ok
}

// Guard redirects requests the current session may not see to the login or
// home destination. A nil engine denies everything.
func Guard(engine *goSession.Engine, req goSession.Requirement) func(http.Handler) http.Handler {
	return guard(engine, func(*http.Request) goSession.Requirement { return req })
}

// Routes guards each request with the requirement registered for its path.
// Unregistered paths are public.
func Routes(engine *goSession.Engine) func(http.Handler) http.Handler {
	return guard(engine, func(r *http.Request) goSession.Requirement {
		if req, ok := engine.RouteRequirement(r.URL.Path); ok {
			return req
		}
		return goSession.Public()
	})
}

func guard(engine *goSession.Engine, requirement func(*http.Request) goSession.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)
			d := engine.Evaluate(ctx, r.URL.Path, requirement(r))
			if !d.Allowed() {
				// Redirecting to the page being guarded would loop.
				if d.Target == r.URL.Path {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
				return
			}

			ctx = context.WithValue(r.Context(), snapshotContextKey{}, engine.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestContext(r *http.Request) context.Context {
	ctx := goSession.WithUserAgent(r.Context(), r.UserAgent())
	if ip := clientIP(r.RemoteAddr); ip != "" {
		ctx = goSession.WithClientIP(ctx, ip)
	}
	return ctx
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
