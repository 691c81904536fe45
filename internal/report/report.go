// Package report renders the Telegram messages the tracker sends: the
// availability alert, the periodic status report, and the bot replies.
// All output uses Telegram HTML parse mode.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/berckan/domaintracker/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// maxListedUnavailable caps the unavailable section of the status report so
// large watch lists do not blow past Telegram's message size limit.
const maxListedUnavailable = 10

func formatTime(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("2006-01-02 15:04")
}

func statusEmoji(status models.Status) string {
	switch status {
	case models.StatusAvailable:
		return "✅"
	case models.StatusUnavailable:
		return "⏳"
	default:
		return "❓"
	}
}

// AvailabilityAlert is the message sent the moment a domain becomes available.
func AvailabilityAlert(domain string, now time.Time) string {
	var b strings.Builder
	b.WriteString("🚨 <b>DOMAIN AVAILABLE!</b> 🚨\n\n")
	fmt.Fprintf(&b, "Domain: <code>%s</code>\n", domain)
	b.WriteString("Status: ✅ Available for registration\n")
	fmt.Fprintf(&b, "Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("Act fast! Register this domain now!")
	return b.String()
}

// StatusReport is the periodic summary sent to the report channel every
// reportEvery cycles.
func StatusReport(state models.TrackerState, cycle, reportEvery int, now time.Time) string {
	stats := models.ComputeStats(state)

	var available, unavailable []string
	for domain := range state.Domains {
		if state.Domains[domain].Status == models.StatusAvailable {
			available = append(available, domain)
		} else {
			unavailable = append(unavailable, domain)
		}
	}
	sort.Strings(available)
	sort.Strings(unavailable)

	var b strings.Builder
	b.WriteString("📊 <b>Domain Monitoring Status Report</b>\n\n")
	fmt.Fprintf(&b, "🔄 Cycle: #%d\n", cycle)
	fmt.Fprintf(&b, "⏰ Time: %s\n", now.Format(timeLayout))
	fmt.Fprintf(&b, "📋 Total domains: %d\n", stats.Total)
	fmt.Fprintf(&b, "✅ Available: %d\n", stats.Available)
	fmt.Fprintf(&b, "⏳ Unavailable: %d\n", stats.Unavailable)
	fmt.Fprintf(&b, "❓ Unknown: %d\n", stats.Unknown)
	fmt.Fprintf(&b, "🔍 Total checks: %d\n\n", stats.TotalChecks)

	if len(available) > 0 {
		fmt.Fprintf(&b, "✅ <b>Available domains (%d):</b>\n", len(available))
		for _, domain := range available {
			entry := state.Domains[domain]
			fmt.Fprintf(&b, "   • %s (since: %s)\n", domain, formatTime(entry.FirstAvailable, "Unknown"))
		}
		b.WriteString("\n")
	}

	if len(unavailable) > 0 {
		fmt.Fprintf(&b, "⏳ <b>Still unavailable (%d):</b>\n", len(unavailable))
		for i, domain := range unavailable {
			if i == maxListedUnavailable {
				fmt.Fprintf(&b, "   ... and %d more\n", len(unavailable)-maxListedUnavailable)
				break
			}
			entry := state.Domains[domain]
			fmt.Fprintf(&b, "   • %s (checked: %s)\n", domain, formatTime(entry.LastChecked, "Never"))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "🤖 Next report in %d cycles", reportEvery)
	return b.String()
}

// DomainList renders the /list reply.
func DomainList(state models.TrackerState) string {
	if len(state.Domains) == 0 {
		return "📋 No domains are currently being monitored."
	}

	domains := make([]string, 0, len(state.Domains))
	for domain := range state.Domains {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Monitored Domains (%d):</b>\n\n", len(domains))
	for _, domain := range domains {
		entry := state.Domains[domain]
		fmt.Fprintf(&b, "%s <code>%s</code> (%s)\n", statusEmoji(entry.Status), domain, entry.Status)
	}
	return b.String()
}

// StatusSummary renders the /status reply.
func StatusSummary(stats models.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Domain Monitoring Status</b>\n\n")
	fmt.Fprintf(&b, "📋 Total domains: %d\n", stats.Total)
	fmt.Fprintf(&b, "✅ Available: %d\n", stats.Available)
	fmt.Fprintf(&b, "⏳ Monitoring: %d\n\n", stats.Unavailable+stats.Unknown)
	b.WriteString("Use /list to see detailed domain status.")
	return b.String()
}

// HelpText renders the /help reply.
func HelpText() string {
	return `🤖 <b>Domain Tracker Bot Commands</b>

<b>Domain Management:</b>
/add &lt;domain&gt; - Add domain to monitoring
/remove &lt;domain&gt; - Remove domain from monitoring
/reset &lt;domain&gt; - Reset available domain to monitoring

<b>Information:</b>
/list - Show all monitored domains
/status - Show monitoring statistics
/help - Show this help message

<b>Examples:</b>
<code>/add example.com</code>
<code>/remove example.com</code>
<code>/reset example.com</code>`
}
