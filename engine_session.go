package goSession

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSession/jwt"
	"go.uber.org/zap"
)

// Snapshot returns an immutable copy of the current session. It never touches
// the backend and keeps working after [Engine.Close].
func (e *Engine) Snapshot() Snapshot {
	if e == nil || e.store == nil {
		return Snapshot{}
	}
	return e.store.Snapshot()
}

// Reload replaces the in-memory session with the persisted one. A malformed
// profile is recovered as absent and reported; a backend failure returns
// [ErrSessionLoad] and keeps the current session.
func (e *Engine) Reload(ctx context.Context) (LoadReport, error) {
	if err := e.ready(); err != nil {
		return LoadReport{}, err
	}

	report, err := e.store.Load(ctx)
	if err != nil {
		e.log.Error("session load failed", zap.Error(err))
		return LoadReport{}, fmt.Errorf("%w: %w", ErrSessionLoad, err)
	}

	e.loadMu.Lock()
	e.lastLoad = report
	e.loadMu.Unlock()

	e.metricInc(MetricSessionLoaded)
	if report.ProfileRecovered {
		e.metricInc(MetricSessionLoadRecovered)
		e.log.Warn("persisted profile unreadable, treated as absent",
			zap.String("key", e.store.Keys().Profile),
			zap.Bool("has_token", report.HasToken),
			zap.Error(report.Cause),
		)
		e.emitAudit(ctx, auditEventSessionLoadRecovered, false, e.store.Snapshot(), "", report.Cause, nil)
	}
	return report, nil
}

// LastLoadReport returns the result of the most recent successful load.
func (e *Engine) LastLoadReport() LoadReport {
	if e == nil {
		return LoadReport{}
	}
	e.loadMu.RLock()
	defer e.loadMu.RUnlock()
	return e.lastLoad
}

// Establish signs the user in: profile and token replace the current session
// and are persisted together. On failure the current session is unchanged.
func (e *Engine) Establish(ctx context.Context, profile Profile, token string) error {
	if err := e.ready(); err != nil {
		return err
	}

	snap, err := e.store.Establish(ctx, profile, token)
	if err != nil {
		e.emitAudit(ctx, auditEventSessionEstablished, false, e.store.Snapshot(), "", err, nil)
		if errors.Is(err, ErrTokenRequired) || errors.Is(err, ErrProfileEncode) {
			return err
		}
		return e.persistFailure("establish", err)
	}

	role, _ := snap.Role()
	e.metricInc(MetricSessionEstablished)
	e.log.Info("session established",
		zap.String("user_id", snap.UserID()),
		zap.String("role", role),
	)
	e.emitAudit(ctx, auditEventSessionEstablished, true, snap, "", nil, nil)
	return nil
}

// AmendProfile shallow-merges partial into the current profile and persists
// it. Token and authenticated state are untouched.
func (e *Engine) AmendProfile(ctx context.Context, partial Profile) error {
	if err := e.ready(); err != nil {
		return err
	}

	snap, err := e.store.AmendProfile(ctx, partial)
	if err != nil {
		if errors.Is(err, ErrProfileEncode) {
			return err
		}
		return e.persistFailure("amend_profile", err)
	}

	e.metricInc(MetricProfileAmended)
	e.log.Debug("profile amended",
		zap.String("user_id", snap.UserID()),
		zap.Int("fields", len(partial)),
	)
	e.emitAudit(ctx, auditEventProfileAmended, true, snap, "", nil, func() map[string]string {
		return map[string]string{"fields": fmt.Sprint(len(partial))}
	})
	return nil
}

// Clear signs the user out. The in-memory session is always reset; a backend
// failure is still reported as [ErrSessionPersist].
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}

	before := e.store.Snapshot()
	err := e.store.Clear(ctx)
	e.metricInc(MetricSessionCleared)
	if err != nil {
		e.emitAudit(ctx, auditEventSessionCleared, false, before, "", err, nil)
		return e.persistFailure("clear", err)
	}

	e.log.Info("session cleared", zap.String("user_id", before.UserID()))
	e.emitAudit(ctx, auditEventSessionCleared, true, before, "", nil, nil)
	return nil
}

func (e *Engine) persistFailure(op string, err error) error {
	e.metricInc(MetricSessionPersistFailure)
	e.log.Error("session persist failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %w", ErrSessionPersist, err)
}

// TokenClaims reads the session token as a JWT. With a token manager
// configured the signature and expiry are verified and verified is true;
// otherwise claims are decoded without verification and must only be used
// for display.
func (e *Engine) TokenClaims() (claims *jwt.Claims, verified bool, err error) {
	token := e.Snapshot().Token()
	if token == "" {
		return nil, false, ErrNotAuthenticated
	}

	if e.tokens != nil {
		claims, err = e.tokens.Parse(token)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrTokenUnreadable, err)
		}
		return claims, true, nil
	}

	claims, err = jwt.Inspect(token)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrTokenUnreadable, err)
	}
	return claims, false, nil
}
