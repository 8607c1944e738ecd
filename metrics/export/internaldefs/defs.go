package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionLoaded, Name: "gosession_session_loaded_total", Help: "Session loads from the backend."},
	{ID: goSession.MetricSessionLoadRecovered, Name: "gosession_session_load_recovered_total", Help: "Loads that recovered an unreadable persisted profile."},
	{ID: goSession.MetricSessionEstablished, Name: "gosession_session_established_total", Help: "Established sessions."},
	{ID: goSession.MetricProfileAmended, Name: "gosession_profile_amended_total", Help: "Profile amendments."},
	{ID: goSession.MetricSessionCleared, Name: "gosession_session_cleared_total", Help: "Cleared sessions."},
	{ID: goSession.MetricSessionPersistFailure, Name: "gosession_session_persist_failure_total", Help: "Session mutations the backend could not persist."},
	{ID: goSession.MetricGuardAllow, Name: "gosession_guard_allow_total", Help: "Access decisions that allowed the destination."},
	{ID: goSession.MetricGuardRedirectLogin, Name: "gosession_guard_redirect_login_total", Help: "Access decisions redirecting to login."},
	{ID: goSession.MetricGuardRedirectHome, Name: "gosession_guard_redirect_home_total", Help: "Access decisions redirecting to home."},
	{ID: goSession.MetricActivityBegin, Name: "gosession_activity_begin_total", Help: "Tracked operations started."},
	{ID: goSession.MetricActivityEnd, Name: "gosession_activity_end_total", Help: "Tracked operations completed."},
	{ID: goSession.MetricActivityMisuse, Name: "gosession_activity_misuse_total", Help: "End calls without a matching outstanding handle."},
	{ID: goSession.MetricActivitySlow, Name: "gosession_activity_slow_total", Help: "Tracked operations that exceeded the slow threshold."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricActivityDuration, Name: "gosession_activity_duration_seconds", Help: "Lifetime of tracked operations."},
}

// Gauge names shared by exporters.
const (
	InFlightName = "gosession_activity_in_flight"
	InFlightHelp = "Tracked operations currently outstanding."

	AuditDroppedName = "gosession_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the upper bounds of the duration buckets in seconds.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
