package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/berckan/domaintracker/internal/report"
	"github.com/berckan/domaintracker/internal/store"
)

// api is the slice of the Telegram client the bot needs; tests swap in fakes.
type api interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
	Send(text, chatID string) bool
}

// Bot processes administrative commands arriving over Telegram. Commands
// from chats outside the allow-list are dropped without a reply.
type Bot struct {
	api        api
	store      *store.Store
	authorized map[string]struct{}
	offset     int64
	log        *slog.Logger
	now        func() time.Time
}

// NewBot creates a bot that accepts commands from the given chat IDs only.
func NewBot(client *Client, st *store.Store, authorizedChats []string, log *slog.Logger) *Bot {
	authorized := make(map[string]struct{}, len(authorizedChats))
	for _, chat := range authorizedChats {
		authorized[chat] = struct{}{}
	}
	return &Bot{
		api:        client,
		store:      st,
		authorized: authorized,
		log:        log.With("component", "bot"),
		now:        time.Now,
	}
}

// Run polls for commands until ctx is cancelled. Poll failures back off and
// never terminate the loop.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("telegram bot started")

	const maxConsecutiveErrors = 5
	consecutiveErrors := 0

	for {
		updates, err := b.api.GetUpdates(ctx, b.offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			consecutiveErrors++
			b.log.Error("poll failed", "error", err, "consecutive", consecutiveErrors)

			delay := 5 * time.Second
			if consecutiveErrors >= maxConsecutiveErrors {
				delay = 30 * time.Second
				consecutiveErrors = 0
			}
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		consecutiveErrors = 0

		for _, update := range updates {
			b.offset = update.UpdateID + 1
			if update.Message != nil {
				b.handleMessage(*update.Message)
			}
		}

		if !sleep(ctx, time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (b *Bot) handleMessage(msg Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if _, ok := b.authorized[chatID]; !ok {
		b.log.Warn("dropping command from unauthorized chat", "chat", chatID)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	reply := b.execute(text)
	if reply == "" {
		return
	}
	if !b.api.Send(reply, chatID) {
		b.log.Error("failed to send command reply", "chat", chatID)
	}
}

// execute parses and runs one command line, returning the reply text.
func (b *Bot) execute(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	verb := strings.ToLower(fields[0])
	// Group chats append the bot name: /list@trackerbot.
	if at := strings.Index(verb, "@"); at != -1 {
		verb = verb[:at]
	}

	arg := ""
	if len(fields) > 1 {
		arg = strings.ToLower(fields[1])
	}

	switch verb {
	case "/add":
		return b.handleAdd(arg)
	case "/remove":
		return b.handleRemove(arg)
	case "/reset":
		return b.handleReset(arg)
	case "/list":
		return report.DomainList(b.store.Snapshot())
	case "/status":
		return report.StatusSummary(b.store.Stats())
	case "/help":
		return report.HelpText()
	default:
		return "❓ Unknown command. Use /help to see available commands."
	}
}

func (b *Bot) handleAdd(domain string) string {
	if !ValidDomain(domain) {
		return "❌ Invalid domain format. Please provide a valid domain (e.g., example.com)"
	}

	err := b.store.Add(domain)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return "⚠️ Domain <code>" + domain + "</code> is already being monitored."
	case err != nil:
		b.log.Error("add failed", "domain", domain, "error", err)
		return "❌ Error adding domain, please try again."
	}
	return "✅ Domain <code>" + domain + "</code> added to monitoring list!"
}

func (b *Bot) handleRemove(domain string) string {
	if !ValidDomain(domain) {
		return "❌ Invalid domain format. Please provide a valid domain (e.g., example.com)"
	}

	err := b.store.Remove(domain)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "⚠️ Domain <code>" + domain + "</code> is not in the monitoring list."
	case err != nil:
		b.log.Error("remove failed", "domain", domain, "error", err)
		return "❌ Error removing domain, please try again."
	}
	return "✅ Domain <code>" + domain + "</code> removed from monitoring list!"
}

func (b *Bot) handleReset(domain string) string {
	if !ValidDomain(domain) {
		return "❌ Invalid domain format. Please provide a valid domain (e.g., example.com)"
	}

	err := b.store.Reset(domain, b.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "❌ Domain " + domain + " is not being monitored. Use /add to add it first."
	case err != nil:
		b.log.Error("reset failed", "domain", domain, "error", err)
		return "❌ Failed to reset domain " + domain + ". Please try again."
	}
	return "✅ Domain " + domain + " has been reset and will be monitored again."
}

// ValidDomain applies the syntax rules for watchable domains: non-empty,
// at least one dot, no whitespace or path-delimiter characters.
func ValidDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || !strings.Contains(domain, ".") {
		return false
	}
	return !strings.ContainsAny(domain, " \t/\\?#")
}
