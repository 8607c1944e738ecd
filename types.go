package goSession

import (
	"github.com/MrEthical07/goSession/access"
	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/session"
)

type (
	// Profile is the open record describing the signed-in user.
	Profile = session.Profile
	// Snapshot is an immutable read of the session.
	Snapshot = session.Snapshot
	// LoadReport describes what was found when the session was rehydrated.
	LoadReport = session.LoadReport

	Requirement  = access.Requirement
	Decision     = access.Decision
	Destinations = access.Destinations

	// Handle identifies one tracked operation.
	Handle = activity.Handle
	// Lease is a scoped acquisition of one tracked operation.
	Lease = activity.Lease
)

// Requirement constructors, re-exported for routing tables.
var (
	Public        = access.Public
	Authenticated = access.Authenticated
	RequireRole   = access.RequireRole
)
