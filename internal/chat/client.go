// Package chat posts notifications to a Google Chat space webhook.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// Message is one outgoing chat notification.
type Message struct {
	// Kind selects the rendering, currently only "plain".
	Kind string
	Text string
	// ThreadKey groups messages about the same subject into one thread.
	ThreadKey string
	// URL is the subject link, appended when the text does not carry it.
	URL string
}

// Sender delivers one message to a chat room.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client posts messages to a configured space webhook url.
type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(webhookURL string, logger zerolog.Logger) *Client {
	return &Client{
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type threadRef struct {
	ThreadKey string `json:"threadKey"`
}

type chatPayload struct {
	Text   string     `json:"text"`
	Thread *threadRef `json:"thread,omitempty"`
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("chat: no webhook url configured")
	}

	text := msg.Text
	if msg.URL != "" && !strings.Contains(text, msg.URL) {
		text = text + " " + msg.URL
	}
	payload := chatPayload{Text: text}
	if key := strings.TrimSpace(msg.ThreadKey); key != "" {
		payload.Thread = &threadRef{ThreadKey: key}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chat: marshal message: %w", err)
	}

	target := c.webhookURL
	if payload.Thread != nil {
		target = withThreadKey(target, payload.Thread.ThreadKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat: post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chat: space webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	c.logger.Debug().
		Str("thread_key", msg.ThreadKey).
		Str("kind", msg.Kind).
		Msg("chat_message_sent")
	return nil
}

// withThreadKey adds the threadKey query parameter the space webhook expects.
func withThreadKey(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("threadKey", key)
	u.RawQuery = q.Encode()
	return u.String()
}

// Nop is a disabled sender used when chat notifications are turned off.
type Nop struct{}

func (Nop) Send(ctx context.Context, msg Message) error { return nil }
