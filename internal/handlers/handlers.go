// Package handlers exposes a small read-only JSON API over the tracker
// state, useful for dashboards and liveness checks. All writes go through
// the Telegram bot; this surface never mutates anything.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/berckan/domaintracker/internal/models"
	"github.com/berckan/domaintracker/internal/store"
)

// DomainRow is the per-domain view returned by /api/domains.
type DomainRow struct {
	Domain           string     `json:"domain"`
	Status           string     `json:"status"`
	LastChecked      *time.Time `json:"last_checked,omitempty"`
	LastStatusChange *time.Time `json:"last_status_change,omitempty"`
	FirstAvailable   *time.Time `json:"first_available,omitempty"`
	NotificationSent bool       `json:"notification_sent"`
}

type Handler struct {
	store *store.Store
	log   *slog.Logger
}

func New(st *store.Store, log *slog.Logger) *Handler {
	return &Handler{store: st, log: log.With("component", "api")}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/status", h.GetStatus)
	r.Get("/api/domains", h.GetDomains)
	return r
}

// GetStatus returns aggregate monitoring stats.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.Stats())
}

// GetDomains returns one row per watched domain, sorted by name.
func (h *Handler) GetDomains(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()

	rows := make([]DomainRow, 0, len(snap.Domains))
	for domain, entry := range snap.Domains {
		rows = append(rows, DomainRow{
			Domain:           domain,
			Status:           string(entry.Status),
			LastChecked:      entry.LastChecked,
			LastStatusChange: entry.LastStatusChange,
			FirstAvailable:   entry.FirstAvailable,
			NotificationSent: entry.NotificationSent,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Domain < rows[j].Domain })

	h.writeJSON(w, struct {
		Domains []DomainRow  `json:"domains"`
		Stats   models.Stats `json:"stats"`
	}{rows, models.ComputeStats(snap)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", "error", err)
	}
}
