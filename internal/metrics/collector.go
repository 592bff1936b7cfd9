// Package metrics records workflow and reconciliation counters.
package metrics

import "time"

// Collector receives domain measurements. Implementations must be safe for
// concurrent use.
type Collector interface {
	// RecordStatusRepair counts a cached task status rewritten to match the
	// resolver. Source is "read", "write" or "reconcile".
	RecordStatusRepair(source string)
	// RecordAssignmentRequest counts request lifecycle actions: "created",
	// "approved" or "rejected".
	RecordAssignmentRequest(action string)
	RecordOverloadCheck(overloaded bool)
	RecordReconcile(scanned, repaired, failed int, duration time.Duration)
	RecordEventDropped()
}
