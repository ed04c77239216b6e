package logger

import (
	"strings"
	"sync/atomic"
)

// Per-component warn/error deltas, bucketed by a substring match on the
// component name.
var (
	fetchWarns     int64
	fetchErrors    int64
	validateWarns  int64
	validateErrors int64
	otherWarns     int64
	otherErrors    int64
)

// RecordWarn buckets a Warn-level log by component name.
func RecordWarn(component string) {
	switch {
	case strings.Contains(component, "fetch"):
		atomic.AddInt64(&fetchWarns, 1)
	case strings.Contains(component, "valid"):
		atomic.AddInt64(&validateWarns, 1)
	default:
		atomic.AddInt64(&otherWarns, 1)
	}
}

// RecordError buckets an Error-level log by component name.
func RecordError(component string) {
	switch {
	case strings.Contains(component, "fetch"):
		atomic.AddInt64(&fetchErrors, 1)
	case strings.Contains(component, "valid"):
		atomic.AddInt64(&validateErrors, 1)
	default:
		atomic.AddInt64(&otherErrors, 1)
	}
}

// Counters is a point-in-time snapshot of the warn/error buckets, surfaced
// in validation_report.txt.
type Counters struct {
	FetchWarns, FetchErrors       int64
	ValidateWarns, ValidateErrors int64
	OtherWarns, OtherErrors       int64
}

// Snapshot reads the current counter values.
func Snapshot() Counters {
	return Counters{
		FetchWarns:      atomic.LoadInt64(&fetchWarns),
		FetchErrors:     atomic.LoadInt64(&fetchErrors),
		ValidateWarns:   atomic.LoadInt64(&validateWarns),
		ValidateErrors:  atomic.LoadInt64(&validateErrors),
		OtherWarns:      atomic.LoadInt64(&otherWarns),
		OtherErrors:     atomic.LoadInt64(&otherErrors),
	}
}
