// Package engine implements the status transition and notification-gating
// logic. Apply is a pure function: it takes the persisted entry and a probe
// verdict and decides the next entry and whether an alert fires. All
// alert-deduplication guarantees live here, nowhere else.
package engine

import (
	"time"

	"github.com/berckan/domaintracker/internal/models"
)

// Apply computes the next entry for a domain given a probe verdict.
//
// shouldNotify is true exactly once per contiguous run of available verdicts:
// on the first available verdict after the entry was unknown or unavailable,
// or after the notification gate was cleared by a reset. A transition to
// unavailable clears the gate and never notifies.
func Apply(entry models.DomainEntry, verdict models.Verdict, now time.Time) (models.DomainEntry, bool) {
	checked := now
	entry.LastChecked = &checked

	newStatus := models.StatusUnavailable
	if verdict == models.VerdictAvailable {
		newStatus = models.StatusAvailable
	}

	if newStatus != entry.Status {
		changed := now
		entry.Status = newStatus
		entry.LastStatusChange = &changed

		if newStatus == models.StatusUnavailable {
			entry.NotificationSent = false
			return entry, false
		}

		// Domain just became available: start a new streak.
		first := now
		entry.FirstAvailable = &first
		entry.NotificationSent = false
	}

	if newStatus == models.StatusAvailable && !entry.NotificationSent {
		entry.NotificationSent = true
		return entry, true
	}

	return entry, false
}
