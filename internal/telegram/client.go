// Package telegram implements the tracker's messaging transport: sending
// alerts and reports to chats, and the long-polling command bot.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// pollTimeout is the long-poll window passed to getUpdates.
const pollTimeout = 30 * time.Second

// Update is one entry from the Bot API getUpdates response.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the subset of the Bot API message object the bot cares about.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// Client is a minimal Telegram Bot API client. It covers exactly the two
// endpoints the tracker uses: sendMessage and getUpdates.
type Client struct {
	token string
	base  string
	http  *http.Client
	poll  *http.Client
	log   *slog.Logger
}

// NewClient creates a client whose send requests time out after sendTimeout.
func NewClient(token string, sendTimeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		token: token,
		base:  defaultAPIBase,
		http:  &http.Client{Timeout: sendTimeout},
		// Long polls need headroom beyond the poll window itself.
		poll: &http.Client{Timeout: pollTimeout + 10*time.Second},
		log:  log.With("component", "telegram"),
	}
}

// Send delivers an HTML-formatted message to a chat. It never returns an
// error: delivery failures are logged and reported as false so callers can
// retry on a later cycle.
func (c *Client) Send(text, chatID string) bool {
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("marshal sendMessage payload", "error", err)
		return false
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.base, c.token)
	resp, err := c.http.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		c.log.Error("sendMessage request failed", "chat", chatID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("sendMessage rejected", "chat", chatID, "status", resp.StatusCode)
		return false
	}

	c.log.Debug("message sent", "chat", chatID)
	return true
}

// GetUpdates long-polls for new messages starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(pollTimeout.Seconds())))
	params.Set("allowed_updates", `["message"]`)

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.base, c.token, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}

	resp, err := c.poll.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getUpdates returned status %d", resp.StatusCode)
	}

	var parsed struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates responded ok=false")
	}

	return parsed.Result, nil
}
