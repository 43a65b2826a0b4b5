// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assistant client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNoEndpoint
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNoEndpoint = &ClientError{Type: ErrTypeNoEndpoint, Message: "no assistant endpoint configured"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "assistant request timed out"}
)

// IsNoEndpoint checks if an error means the webhook URL is not configured.
func IsNoEndpoint(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNoEndpoint
	}
	return errors.Is(err, ErrNoEndpoint)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the assistant client.
type ClientConfig struct {
	// WebhookURL is the outbound message endpoint. Empty means not
	// configured; Send fails fast with ErrNoEndpoint.
	WebhookURL string

	// Source identifies this client in outbound payloads (default: "wayra-tui").
	Source string

	// Timeout bounds one send round trip (default: 180s; assistant flows
	// can be slow).
	Timeout time.Duration

	// NotifyTimeout bounds the fire-and-forget session-start POST
	// (default: 10s).
	NotifyTimeout time.Duration

	// RatePerSec and Burst throttle outbound requests (default: 1, 3).
	RatePerSec float64
	Burst      int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Source:        "wayra-tui",
		Timeout:       180 * time.Second,
		NotifyTimeout: 10 * time.Second,
		RatePerSec:    1,
		Burst:         3,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the assistant webhook. Thread-safe for concurrent use,
// though the UI only ever keeps one send in flight.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an assistant client, filling defaults for zero values.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Source == "" {
		config.Source = "wayra-tui"
	}
	if config.Timeout == 0 {
		config.Timeout = 180 * time.Second
	}
	if config.NotifyTimeout == 0 {
		config.NotifyTimeout = 10 * time.Second
	}
	if config.RatePerSec == 0 {
		config.RatePerSec = 1
	}
	if config.Burst == 0 {
		config.Burst = 3
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RatePerSec), config.Burst),
	}
}

// =============================================================================
// OUTBOUND MESSAGES
// =============================================================================

// Outbound is the payload of one user message.
type Outbound struct {
	Message          string   `json:"message"`
	Source           string   `json:"source"`
	SessionID        string   `json:"sessionId"`
	AccommodationIDs []string `json:"accommodationIds,omitempty"`
}

// Reply is the assistant's answer. SessionID is set when the upstream
// flow hands back its own session identifier.
type Reply struct {
	Text      string
	SessionID string
}

// replyBody covers the field names the automation platform answers with.
type replyBody struct {
	Reply      string `json:"reply"`
	Text       string `json:"text"`
	Message    string `json:"message"`
	SessionID  string `json:"sessionId"`
	SessionID2 string `json:"session_id"`
}

// Send posts one message and waits for the reply. Exactly one request per
// call; the caller enforces single-in-flight at the UI level.
func (c *Client) Send(ctx context.Context, msg Outbound) (*Reply, error) {
	if c.config.WebhookURL == "" {
		return nil, ErrNoEndpoint
	}
	if msg.Source == "" {
		msg.Source = c.config.Source
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "send throttled", Cause: err}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "assistant unreachable", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "assistant request failed: " + resp.Status}
	}

	return parseReply(raw), nil
}

// parseReply accepts either a JSON object with one of several reply field
// names, or a raw text body.
func parseReply(raw []byte) *Reply {
	var body replyBody
	if err := json.Unmarshal(raw, &body); err == nil {
		text := body.Reply
		if text == "" {
			text = body.Text
		}
		if text == "" {
			text = body.Message
		}
		sid := body.SessionID
		if sid == "" {
			sid = body.SessionID2
		}
		if text != "" || sid != "" {
			return &Reply{Text: text, SessionID: sid}
		}
	}
	return &Reply{Text: strings.TrimSpace(string(raw))}
}

// =============================================================================
// SESSION-START NOTIFICATION
// =============================================================================

// startContext describes where the conversation began.
type startContext struct {
	Route    string `json:"route"`
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

type startEvent struct {
	Event     string       `json:"event"`
	SessionID string       `json:"sessionId"`
	Source    string       `json:"source"`
	Context   startContext `json:"context"`
}

// NotifySessionStart posts a one-time session-start event in the
// background. Best effort: failures are ignored entirely.
func (c *Client) NotifySessionStart(sessionID, route string) {
	if c.config.WebhookURL == "" {
		return
	}
	payload := startEvent{
		Event:     "session_start",
		SessionID: sessionID,
		Source:    c.config.Source,
		Context: startContext{
			Route:    route,
			Locale:   detectLocale(),
			Timezone: detectTimezone(),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.NotifyTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}

// detectLocale reads the BCP 47 tag from the environment, defaulting to
// Spanish for the RutaViva audience.
func detectLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexByte(v, '.'); i >= 0 {
			v = v[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			return tag.String()
		}
	}
	return language.Spanish.String()
}

func detectTimezone() string {
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	zone, _ := time.Now().Zone()
	return zone
}
