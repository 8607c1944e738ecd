package goSession

import (
	"fmt"
	"strings"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is a legal but questionable configuration choice.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of warnings produced by [Config.Lint].
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that pass [Config.Validate] but are likely mistakes
// in production. It never mutates c.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.Session.Backend == BackendMemory {
		add("memory_backend_not_durable", LintWarn,
			"in-memory session backend does not survive restarts")
	}
	if c.Session.Backend == BackendRedis && c.Session.KeyPrefix == "" {
		add("redis_no_key_prefix", LintInfo,
			"session keys are stored without a prefix in a shared Redis keyspace")
	}
	if c.Access.LoginPath != "" && c.Access.LoginPath == c.Access.HomePath {
		add("login_equals_home", LintHigh,
			"login and home destinations are the same; a role mismatch would redirect to login")
	}
	if len(c.Access.Roles) == 0 {
		add("no_roles_declared", LintInfo,
			"no roles declared; role requirements are not checked against a registry")
	}
	if c.Token.SigningMethod == "" {
		add("token_claims_unverified", LintWarn,
			"token claims are decoded without signature verification")
	}
	if c.Activity.SlowOperationThreshold == 0 {
		add("slow_operation_check_disabled", LintInfo,
			"tracked operations are never reported as slow")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "audit events are not emitted")
	} else if !c.Audit.DropIfFull {
		add("audit_blocking", LintWarn,
			"a full audit buffer blocks session and guard operations")
	}
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "metrics are not recorded")
	}
	if strings.EqualFold(c.Log.Level, "debug") {
		add("debug_logging", LintWarn, "debug logging may record profile data")
	}
	return ws
}
