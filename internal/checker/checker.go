// Package checker decides whether a domain is available for registration.
// It queries RDAP first, falls back to WHOIS, and classifies the responses
// against fixed pattern tables. Probe never fails: any timeout, network
// error, or ambiguous response degrades to unavailable so that a broken
// lookup can never fire a false availability alert.
package checker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"

	"github.com/berckan/domaintracker/internal/models"
)

// rdapNotFoundPatterns classify an RDAP error as "domain unregistered".
// Matched case-insensitively as substrings, in order.
var rdapNotFoundPatterns = []string{
	"domain not found",
	"negative_answer_404",
	"not found",
	"no matching record",
	"does not exist",
}

// availablePatterns classify a raw WHOIS response as "domain unregistered"
// when the parser found no structured registration data.
var availablePatterns = []string{
	"no match",
	"not found",
	"no data found",
	"not exist",
	"no entries found",
	"no matching record",
	"available",
	"not registered",
	"no such domain",
	"domain not found",
}

// registrationIndicators are the parsed WHOIS fields whose presence marks a
// domain as registered. Checked before any raw-text pattern.
var registrationIndicators = []struct {
	name  string
	value func(whoisparser.WhoisInfo) string
}{
	{"created", func(w whoisparser.WhoisInfo) string { return domainField(w, func(d *whoisparser.Domain) string { return d.CreatedDate }) }},
	{"updated", func(w whoisparser.WhoisInfo) string { return domainField(w, func(d *whoisparser.Domain) string { return d.UpdatedDate }) }},
	{"expires", func(w whoisparser.WhoisInfo) string { return domainField(w, func(d *whoisparser.Domain) string { return d.ExpirationDate }) }},
	{"status", func(w whoisparser.WhoisInfo) string { return domainField(w, func(d *whoisparser.Domain) string { return strings.Join(d.Status, ",") }) }},
	{"domain_name", func(w whoisparser.WhoisInfo) string { return domainField(w, func(d *whoisparser.Domain) string { return d.Domain }) }},
	{"registrar", func(w whoisparser.WhoisInfo) string {
		if w.Registrar == nil {
			return ""
		}
		return w.Registrar.Name
	}},
}

func domainField(w whoisparser.WhoisInfo, f func(*whoisparser.Domain) string) string {
	if w.Domain == nil {
		return ""
	}
	return f(w.Domain)
}

// Checker probes domain registration status.
type Checker struct {
	rdap         *rdap.Client
	whois        *whois.Client
	rdapTimeout  time.Duration
	whoisTimeout time.Duration
	log          *slog.Logger
}

// New creates a checker with per-protocol lookup timeouts.
func New(rdapTimeout, whoisTimeout time.Duration, log *slog.Logger) *Checker {
	return &Checker{
		rdap:         &rdap.Client{},
		whois:        whois.NewClient().SetTimeout(whoisTimeout),
		rdapTimeout:  rdapTimeout,
		whoisTimeout: whoisTimeout,
		log:          log.With("component", "checker"),
	}
}

// Probe returns the availability verdict for a domain. It never returns an
// error; see the package comment for the degradation policy.
func (c *Checker) Probe(ctx context.Context, domain string) models.Verdict {
	// RDAP first: a not-found answer is the strongest availability signal.
	rdapCtx, cancel := context.WithTimeout(ctx, c.rdapTimeout)
	defer cancel()

	req := rdap.NewRequest(rdap.DomainRequest, domain).WithContext(rdapCtx)
	if _, err := c.rdap.Do(req); err != nil {
		if rdapErrorMeansAvailable(err) {
			return models.VerdictAvailable
		}
		c.log.Debug("rdap lookup failed, trying whois", "domain", domain, "error", err)
	} else {
		// A registered RDAP object exists.
		return models.VerdictUnavailable
	}

	raw, err := c.whois.Whois(domain)
	if err != nil {
		c.log.Warn("whois lookup failed, assuming unavailable", "domain", domain, "error", err)
		return models.VerdictUnavailable
	}

	return ClassifyWhois(raw)
}

// rdapErrorMeansAvailable reports whether an RDAP failure indicates the
// domain is unregistered rather than the lookup being broken.
func rdapErrorMeansAvailable(err error) bool {
	var ce *rdap.ClientError
	if errors.As(err, &ce) && ce.Type == rdap.ObjectDoesNotExist {
		return true
	}
	var cev rdap.ClientError
	if errors.As(err, &cev) && cev.Type == rdap.ObjectDoesNotExist {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range rdapNotFoundPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// ClassifyWhois maps a raw WHOIS response to a verdict. Exported so the
// classification policy is testable without the network.
func ClassifyWhois(raw string) models.Verdict {
	parsed, err := whoisparser.Parse(raw)
	switch {
	case err == nil:
		if hasRegistrationIndicators(parsed) {
			return models.VerdictUnavailable
		}
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return models.VerdictAvailable
	case errors.Is(err, whoisparser.ErrReservedDomain),
		errors.Is(err, whoisparser.ErrPremiumDomain),
		errors.Is(err, whoisparser.ErrBlockedDomain):
		// Reserved and premium names cannot be plainly registered.
		return models.VerdictUnavailable
	}

	rawLower := strings.ToLower(raw)
	for _, pattern := range availablePatterns {
		if strings.Contains(rawLower, pattern) {
			return models.VerdictAvailable
		}
	}

	// Ambiguous data never triggers an availability alert.
	return models.VerdictUnavailable
}

func hasRegistrationIndicators(info whoisparser.WhoisInfo) bool {
	for _, indicator := range registrationIndicators {
		if indicator.value(info) != "" {
			return true
		}
	}
	return false
}
