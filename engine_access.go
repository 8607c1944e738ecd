package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/access"
	"go.uber.org/zap"
)

// Destinations returns the configured login and home paths.
func (e *Engine) Destinations() Destinations {
	if e == nil {
		return access.DefaultDestinations()
	}
	return e.dest
}

// Decide evaluates req against the current session.
func (e *Engine) Decide(req Requirement) Decision {
	return e.Evaluate(context.Background(), "", req)
}

// Evaluate is Decide for a named destination. target labels logs and audit
// events; ctx carries request metadata set with [WithClientIP] and
// [WithUserAgent].
func (e *Engine) Evaluate(ctx context.Context, target string, req Requirement) Decision {
	return e.decide(ctx, target, req)
}

// DecideRoute evaluates the requirement registered for path. Paths that were
// never registered are public.
func (e *Engine) DecideRoute(ctx context.Context, path string) Decision {
	req, ok := e.RouteRequirement(path)
	if !ok {
		req = access.Public()
	}
	return e.decide(ctx, path, req)
}

// RouteRequirement returns the requirement registered for path.
func (e *Engine) RouteRequirement(path string) (Requirement, bool) {
	if e == nil || e.routes == nil {
		return Requirement{}, false
	}
	return e.routes.Lookup(path)
}

// Roles returns the declared role names, sorted.
func (e *Engine) Roles() []string {
	if e == nil || e.roles == nil {
		return nil
	}
	return e.roles.Names()
}

func (e *Engine) decide(ctx context.Context, target string, req Requirement) Decision {
	snap := e.Snapshot()
	d := access.Decide(req, snap, e.Destinations())

	switch d.Outcome {
	case access.Allow:
		e.metricInc(MetricGuardAllow)
		return d
	case access.RedirectLogin:
		e.metricInc(MetricGuardRedirectLogin)
	case access.RedirectHome:
		e.metricInc(MetricGuardRedirectHome)
	}

	if e != nil && e.log != nil {
		e.log.Debug("access redirected",
			zap.String("target", target),
			zap.Stringer("requirement", req),
			zap.Stringer("outcome", d.Outcome),
		)
	}
	e.emitAudit(ctx, auditEventGuardRedirect, false, snap, target, nil, func() map[string]string {
		return map[string]string{
			"requirement": req.String(),
			"outcome":     d.Outcome.String(),
			"redirect":    d.Target,
		}
	})
	return d
}
