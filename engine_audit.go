package goSession

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSessionEstablished   = "session_established"
	auditEventProfileAmended       = "profile_amended"
	auditEventSessionCleared       = "session_cleared"
	auditEventSessionLoadRecovered = "session_load_recovered"
	auditEventGuardRedirect        = "guard_redirect"
	auditEventActivityMisuse       = "activity_misuse"
	auditEventActivitySlow         = "activity_slow"
)

// AuditErrorCode is the stable error label carried by failed audit events.
type AuditErrorCode string

const (
	auditErrBackendUnavailable AuditErrorCode = "backend_unavailable"
	auditErrMalformedProfile   AuditErrorCode = "malformed_profile"
	auditErrTokenRequired      AuditErrorCode = "token_required"
	auditErrNotOutstanding     AuditErrorCode = "handle_not_outstanding"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject Snapshot,
	target string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ip := clientIPFromContext(ctx); ip != "" {
		metadata = withMeta(metadata, "ip", ip)
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		metadata = withMeta(metadata, "user_agent", ua)
	}

	role, _ := subject.Role()
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    subject.UserID(),
		Role:      role,
		Target:    target,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func withMeta(m map[string]string, k, v string) map[string]string {
	if m == nil {
		m = make(map[string]string, 2)
	}
	m[k] = v
	return m
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return auditErrBackendUnavailable
	case errors.Is(err, ErrProfileMalformed):
		return auditErrMalformedProfile
	case errors.Is(err, ErrTokenRequired):
		return auditErrTokenRequired
	case errors.Is(err, ErrHandleNotOutstanding):
		return auditErrNotOutstanding
	default:
		return auditErrInternal
	}
}
