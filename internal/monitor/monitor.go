// Package monitor drives the periodic check cycles: select the domains that
// still need probing, fan the probes out with bounded concurrency, apply the
// results, alert on availability, and emit a status report every N cycles.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/berckan/domaintracker/internal/models"
	"github.com/berckan/domaintracker/internal/report"
	"github.com/berckan/domaintracker/internal/store"
)

// Prober yields an availability verdict for a domain. Implementations must
// not block past their configured timeouts.
type Prober interface {
	Probe(ctx context.Context, domain string) models.Verdict
}

// Sink delivers a formatted message to a chat, reporting success as a bool.
type Sink interface {
	Send(text, chatID string) bool
}

// Monitor runs the check loop against a shared store.
type Monitor struct {
	store  *store.Store
	prober Prober
	sink   Sink

	alertChat     string
	reportChat    string
	interval      time.Duration
	reportEvery   int
	maxConcurrent int

	log *slog.Logger
	now func() time.Time
}

// New assembles a monitor. maxConcurrent bounds how many probes run at once
// within a cycle; reportEvery is the cycle period of status reports.
func New(st *store.Store, prober Prober, sink Sink, alertChat, reportChat string,
	interval time.Duration, reportEvery, maxConcurrent int, log *slog.Logger) *Monitor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Monitor{
		store:         st,
		prober:        prober,
		sink:          sink,
		alertChat:     alertChat,
		reportChat:    reportChat,
		interval:      interval,
		reportEvery:   reportEvery,
		maxConcurrent: maxConcurrent,
		log:           log.With("component", "monitor"),
		now:           time.Now,
	}
}

// Run loops check cycles until ctx is cancelled. The cycle counter resumes
// from the persisted value so reports number cycles across restarts.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("domain monitoring started", "interval", m.interval, "report_every", m.reportEvery)

	cycle := m.store.CycleCount()
	for {
		cycle++
		m.store.SetCycleCount(cycle)

		m.RunCycle(ctx)

		if cycle%m.reportEvery == 0 {
			m.sendStatusReport(cycle)
		}

		m.log.Debug("cycle completed", "cycle", cycle)
		timer := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunCycle probes every domain due for a check. Each domain's result is
// applied and persisted as its probe completes; one failing domain never
// aborts the rest of the cycle.
func (m *Monitor) RunCycle(ctx context.Context) {
	domains := m.store.DomainsToCheck()
	if len(domains) == 0 {
		m.log.Info("no domains need checking (all may be available and notified)")
		return
	}
	m.log.Info("monitoring domains", "checking", len(domains), "total", len(m.store.Domains()))

	g := new(errgroup.Group)
	g.SetLimit(m.maxConcurrent)
	for _, domain := range domains {
		g.Go(func() error {
			m.checkDomain(ctx, domain)
			return nil
		})
	}
	g.Wait()
}

func (m *Monitor) checkDomain(ctx context.Context, domain string) {
	verdict := m.prober.Probe(ctx, domain)
	notify := m.store.UpdateStatus(domain, verdict, m.now())
	if !notify {
		return
	}

	if m.sink.Send(report.AvailabilityAlert(domain, m.now()), m.alertChat) {
		m.log.Info("ALERT: domain is available, notification sent", "domain", domain)
		return
	}

	// Reopen the gate so a later cycle retries the alert.
	m.store.MarkNotificationFailed(domain)
	m.log.Error("availability alert delivery failed, will retry", "domain", domain)
}

func (m *Monitor) sendStatusReport(cycle int) {
	msg := report.StatusReport(m.store.Snapshot(), cycle, m.reportEvery, m.now())
	if m.sink.Send(msg, m.reportChat) {
		m.log.Info("status report sent", "cycle", cycle)
	} else {
		m.log.Error("failed to send status report", "cycle", cycle)
	}
}
