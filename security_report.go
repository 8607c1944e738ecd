package goSession

import (
	"time"

	"github.com/MrEthical07/goSession/session"
)

// SecurityReport summarizes the security-relevant posture of a built engine.
type SecurityReport struct {
	Backend                string
	DurableSession         bool
	KeyPrefix              string
	TokenVerification      bool
	SigningAlgorithm       string
	TokenLeeway            time.Duration
	DeclaredRoles          int
	RegisteredRoutes       int
	LoginPath              string
	HomePath               string
	SlowOperationThreshold time.Duration
	AuditEnabled           bool
	MetricsEnabled         bool
	LintWarnings           []string
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	var routes int
	if e.routes != nil {
		routes = e.routes.Len()
	}
	var roles int
	if e.roles != nil {
		roles = e.roles.Count()
	}

	_, inMemory := e.backend.(*session.MemoryBackend)
	return SecurityReport{
		Backend:                backendName(e.backend),
		DurableSession:         !inMemory,
		KeyPrefix:              e.config.Session.KeyPrefix,
		TokenVerification:      e.tokens != nil,
		SigningAlgorithm:       e.config.Token.SigningMethod,
		TokenLeeway:            e.config.Token.Leeway,
		DeclaredRoles:          roles,
		RegisteredRoutes:       routes,
		LoginPath:              e.dest.Login,
		HomePath:               e.dest.Home,
		SlowOperationThreshold: e.config.Activity.SlowOperationThreshold,
		AuditEnabled:           e.audit != nil,
		MetricsEnabled:         e.metrics.Enabled(),
		LintWarnings:           e.config.Lint().Codes(),
	}
}
