package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/access"
	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrEngineNotReady is returned by methods called on a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrBuilderUsed is returned by a second call to [Builder.Build].
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps every [Config.Validate] failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSessionLoad is returned when the persisted session cannot be read.
	ErrSessionLoad = errors.New("session load failed")
	// ErrSessionPersist is returned when a session mutation cannot be stored.
	// The in-memory session is unchanged for Establish and AmendProfile.
	ErrSessionPersist = errors.New("session persist failed")
	// ErrNotAuthenticated is returned by token operations without a token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrTokenUnreadable is returned when the session token is not a JWT the
	// engine can read.
	ErrTokenUnreadable = errors.New("session token unreadable")

	ErrTokenRequired        = session.ErrTokenRequired
	ErrProfileMalformed     = session.ErrProfileMalformed
	ErrProfileEncode        = session.ErrProfileEncode
	ErrBackendUnavailable   = session.ErrBackendUnavailable
	ErrHandleNotOutstanding = activity.ErrHandleNotOutstanding
	ErrUnknownRequirement   = access.ErrUnknownRequirement
	ErrUnknownRole          = access.ErrUnknownRole
)
