package models

import "time"

// Status represents the persisted availability belief for a domain.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Verdict is the outcome of a single availability probe. The prober never
// produces an unknown verdict: every failure path degrades to unavailable.
type Verdict string

const (
	VerdictAvailable   Verdict = "available"
	VerdictUnavailable Verdict = "unavailable"
)

// DomainEntry holds the tracked state for one watched domain.
type DomainEntry struct {
	Status           Status     `json:"status"`
	LastChecked      *time.Time `json:"last_checked"`
	LastStatusChange *time.Time `json:"last_status_change"`
	FirstAvailable   *time.Time `json:"first_available_date"`
	NotificationSent bool       `json:"notification_sent"`
}

// NewDomainEntry creates an entry with default values for a freshly added domain.
func NewDomainEntry() DomainEntry {
	return DomainEntry{Status: StatusUnknown}
}

// TrackerState is the full persisted state of the tracker.
type TrackerState struct {
	Domains     map[string]DomainEntry `json:"domains"`
	TotalChecks int                    `json:"total_checks"`
	LastUpdated *time.Time             `json:"last_updated"`
}

// NewTrackerState returns an empty state with an initialized domain map.
func NewTrackerState() TrackerState {
	return TrackerState{Domains: make(map[string]DomainEntry)}
}

// Clone returns a deep copy of the state safe to hand out to readers.
func (s TrackerState) Clone() TrackerState {
	out := TrackerState{
		Domains:     make(map[string]DomainEntry, len(s.Domains)),
		TotalChecks: s.TotalChecks,
	}
	for domain, entry := range s.Domains {
		out.Domains[domain] = entry
	}
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// Stats aggregates per-status counts across all tracked domains.
type Stats struct {
	Total       int        `json:"total"`
	Available   int        `json:"available"`
	Unavailable int        `json:"unavailable"`
	Unknown     int        `json:"unknown"`
	TotalChecks int        `json:"total_checks"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// ComputeStats counts domains per status for the given state.
func ComputeStats(s TrackerState) Stats {
	stats := Stats{
		Total:       len(s.Domains),
		TotalChecks: s.TotalChecks,
		LastUpdated: s.LastUpdated,
	}
	for _, entry := range s.Domains {
		switch entry.Status {
		case StatusAvailable:
			stats.Available++
		case StatusUnavailable:
			stats.Unavailable++
		default:
			stats.Unknown++
		}
	}
	return stats
}
