// Package store persists the tracker state as a JSON file. Every mutation
// runs under a single writer lock and is written back synchronously, so two
// loops (monitor and bot) can share one store without losing updates.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/berckan/domaintracker/internal/engine"
	"github.com/berckan/domaintracker/internal/models"
)

var (
	ErrNotFound  = errors.New("domain is not being monitored")
	ErrDuplicate = errors.New("domain is already being monitored")
)

// Store owns the tracker state and its backing file.
type Store struct {
	mu    sync.Mutex
	path  string
	state models.TrackerState
	log   *slog.Logger
}

// Open loads the state file at path, creating it with the given default
// domains if it does not exist. A corrupt or unreadable file degrades to an
// empty state rather than failing startup.
func Open(path string, defaults []string, log *slog.Logger) (*Store, error) {
	s := &Store{path: path, log: log.With("component", "store")}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.state = models.NewTrackerState()
		for _, domain := range defaults {
			s.state.Domains[normalize(domain)] = models.NewDomainEntry()
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("create state file: %w", err)
		}
		s.log.Info("created initial state file", "path", path, "domains", len(defaults))
	case err != nil:
		s.log.Error("state file unreadable, starting empty", "path", path, "error", err)
		s.state = models.NewTrackerState()
	default:
		if err := json.Unmarshal(data, &s.state); err != nil {
			s.log.Error("state file corrupt, starting empty", "path", path, "error", err)
			s.state = models.NewTrackerState()
		}
		if s.state.Domains == nil {
			s.state.Domains = make(map[string]models.DomainEntry)
		}
	}

	return s, nil
}

// save writes the state to disk via a temp file rename. Caller must hold mu.
func (s *Store) save() error {
	now := time.Now()
	s.state.LastUpdated = &now

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// persist saves and logs instead of failing: the in-memory state stays
// authoritative even if the disk write did not land.
func (s *Store) persist() {
	if err := s.save(); err != nil {
		s.log.Error("state save failed", "error", err)
	}
}

func normalize(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// Add registers a new domain with a default entry.
func (s *Store) Add(domain string) error {
	domain = normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Domains[domain]; ok {
		return ErrDuplicate
	}
	s.state.Domains[domain] = models.NewDomainEntry()
	s.persist()
	s.log.Info("domain added", "domain", domain)
	return nil
}

// Remove deletes a domain from monitoring.
func (s *Store) Remove(domain string) error {
	domain = normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Domains[domain]; !ok {
		return ErrNotFound
	}
	delete(s.state.Domains, domain)
	s.persist()
	s.log.Info("domain removed", "domain", domain)
	return nil
}

// Reset re-arms monitoring for a domain: status goes back to unknown and the
// notification gate opens. First-available history is deliberately kept.
func (s *Store) Reset(domain string, now time.Time) error {
	domain = normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.state.Domains[domain]
	if !ok {
		return ErrNotFound
	}
	entry.Status = models.StatusUnknown
	entry.NotificationSent = false
	entry.LastStatusChange = &now
	s.state.Domains[domain] = entry
	s.persist()
	s.log.Info("domain reset for monitoring", "domain", domain)
	return nil
}

// UpdateStatus runs the transition engine for a probe verdict and persists
// the result. Unseen domains get a fresh entry first. The returned flag tells
// the caller to dispatch an availability alert.
func (s *Store) UpdateStatus(domain string, verdict models.Verdict, now time.Time) bool {
	domain = normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.state.Domains[domain]
	if !ok {
		entry = models.NewDomainEntry()
	}
	entry, notify := engine.Apply(entry, verdict, now)
	s.state.Domains[domain] = entry
	s.persist()
	return notify
}

// MarkNotificationFailed reopens the notification gate after a delivery
// failure so a later cycle retries the alert.
func (s *Store) MarkNotificationFailed(domain string) {
	domain = normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.state.Domains[domain]
	if !ok {
		return
	}
	entry.NotificationSent = false
	s.state.Domains[domain] = entry
	s.persist()
}

// SetCycleCount records the monitor's cycle counter.
func (s *Store) SetCycleCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.TotalChecks = n
	s.persist()
}

// CycleCount returns the persisted cycle counter.
func (s *Store) CycleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalChecks
}

// Domains returns all monitored domain names.
func (s *Store) Domains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.state.Domains))
	for domain := range s.state.Domains {
		names = append(names, domain)
	}
	return names
}

// DomainsToCheck returns the domains the next cycle should probe. Domains
// that are available and already alerted stay frozen until an explicit reset.
func (s *Store) DomainsToCheck() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.state.Domains))
	for domain, entry := range s.state.Domains {
		if entry.Status == models.StatusAvailable && entry.NotificationSent {
			continue
		}
		names = append(names, domain)
	}
	return names
}

// Snapshot returns a deep copy of the current state for readers.
func (s *Store) Snapshot() models.TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Stats aggregates current per-status counts.
func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ComputeStats(s.state)
}

// Path returns the backing file location, mostly for logs.
func (s *Store) Path() string {
	return filepath.Clean(s.path)
}
