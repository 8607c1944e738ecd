package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// RequireAuth admits any authenticated session.
func RequireAuth(engine *goSession.Engine) func(http.Handler) http.Handler {
	return Guard(engine, goSession.Authenticated())
}

// RequireRole admits authenticated sessions whose profile role equals role.
func RequireRole(engine *goSession.Engine, role string) func(http.Handler) http.Handler {
	return Guard(engine, goSession.RequireRole(role))
}
