package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrTokenRequired is returned by [Store.Establish] for an empty token. An
// established session is authenticated by definition, so it needs a token.
var ErrTokenRequired = errors.New("session token required")

// Keys names the two persisted session keys.
type Keys struct {
	Profile string
	Token   string
}

// DefaultKeys returns the standard layout: "user" and "token".
func DefaultKeys() Keys {
	return Keys{Profile: "user", Token: "token"}
}

// LoadReport describes what [Store.Load] found in the backend.
type LoadReport struct {
	HasProfile bool
	HasToken   bool
	// ProfileRecovered is set when a stored profile could not be parsed and
	// was treated as absent. Cause holds the parse error.
	ProfileRecovered bool
	Cause            error
}

// Store holds the current session and mirrors every mutation into a
// [Backend].
//
// All mutations hold the store lock across persistence and the in-memory
// swap, so concurrent calls are applied in lock order and the last one wins.
type Store struct {
	backend Backend
	keys    Keys

	mu      sync.RWMutex
	profile Profile
	token   string
}

// NewStore creates an empty store. Call [Store.Load] to rehydrate persisted
// state. Empty key names fall back to [DefaultKeys].
func NewStore(backend Backend, keys Keys) *Store {
	def := DefaultKeys()
	if keys.Profile == "" {
		keys.Profile = def.Profile
	}
	if keys.Token == "" {
		keys.Token = def.Token
	}
	return &Store{
		backend: backend,
		keys:    keys,
	}
}

// Keys returns the persisted key names.
func (s *Store) Keys() Keys {
	return s.keys
}

// Load replaces the in-memory session with the persisted one.
//
// A missing, null or malformed profile yields no profile; only backend
// failures are returned as errors, and they leave the current state intact.
func (s *Store) Load(ctx context.Context) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawProfile, profileFound, err := s.backend.Load(ctx, s.keys.Profile)
	if err != nil {
		return LoadReport{}, err
	}
	rawToken, tokenFound, err := s.backend.Load(ctx, s.keys.Token)
	if err != nil {
		return LoadReport{}, err
	}

	var report LoadReport
	var profile Profile
	if profileFound {
		decoded, decErr := DecodeProfile(rawProfile)
		if decErr != nil {
			report.ProfileRecovered = true
			report.Cause = decErr
		} else {
			profile = decoded
		}
	}

	var token string
	if tokenFound {
		token = string(rawToken)
	}

	s.profile = profile
	s.token = token

	report.HasProfile = profile != nil
	report.HasToken = token != ""
	return report, nil
}

// Establish replaces profile and token and persists both keys in one backend
// call. On a persistence error the in-memory session is left unchanged.
//
// The stored profile is the decoded persisted form, so the in-memory session
// always equals what [Store.Load] rebuilds and shares nothing with the caller.
// The returned snapshot is the state this call produced.
func (s *Store) Establish(ctx context.Context, profile Profile, token string) (Snapshot, error) {
	if token == "" {
		return Snapshot{}, ErrTokenRequired
	}

	data, next, err := roundTrip(profile)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.backend.Save(ctx,
		Entry{Key: s.keys.Profile, Value: data},
		Entry{Key: s.keys.Token, Value: []byte(token)},
	)
	if err != nil {
		return Snapshot{}, err
	}

	s.profile = next
	s.token = token
	return Snapshot{profile: s.profile, token: s.token}, nil
}

// AmendProfile shallow-merges partial into the current profile and persists
// the profile key only. Without a current profile the result is partial
// alone. Token and authenticated state are untouched. The returned snapshot
// is the state this call produced.
func (s *Store) AmendProfile(ctx context.Context, partial Profile) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(Profile, len(s.profile)+len(partial))
	for k, v := range s.profile {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}

	data, next, err := roundTrip(merged)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.backend.Save(ctx, Entry{Key: s.keys.Profile, Value: data}); err != nil {
		return Snapshot{}, err
	}

	s.profile = next
	return Snapshot{profile: s.profile, token: s.token}, nil
}

// roundTrip encodes p and decodes it back into the form Load would produce.
func roundTrip(p Profile) ([]byte, Profile, error) {
	data, err := EncodeProfile(p)
	if err != nil {
		return nil, nil, err
	}
	decoded, err := DecodeProfile(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrProfileEncode, err)
	}
	return data, decoded, nil
}

// Clear resets to the empty session and deletes both persisted keys. The
// in-memory reset happens even when the backend delete fails; the backend
// error is still returned. Calling Clear repeatedly is harmless.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = nil
	s.token = ""

	return s.backend.Delete(ctx, s.keys.Profile, s.keys.Token)
}

// Snapshot returns an immutable copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// s.profile is never mutated in place, so sharing it is safe; Snapshot
	// hands out clones only.
	return Snapshot{profile: s.profile, token: s.token}
}
