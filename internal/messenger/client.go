package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/zokybot/zoky-messenger-go/internal/config"
	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/metrics"
)

// maxErrorBody caps how much of a rejection body is logged.
const maxErrorBody = 4 << 10

// Client calls the Send API.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

// ClientConfig holds configuration for creating a new Client.
type ClientConfig struct {
	BaseURL     string // e.g. https://graph.facebook.com/v2.6
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client // optional; overrides Timeout
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// NewClient creates a Send API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = config.SendRequest
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient:  httpClient,
		endpoint:    cfg.BaseURL + "/me/messages",
		accessToken: cfg.AccessToken,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.WithModule("messenger"),
	}
}

type recipient struct {
	ID string `json:"id"`
}

type sendRequest struct {
	Recipient recipient `json:"recipient"`
	Message   Message   `json:"message"`
}

// Send delivers one message to recipientID.
//
// Only transport failures are returned. A non-2xx answer from the platform
// is logged and counted as rejected but still treated as delivered.
func (c *Client) Send(ctx context.Context, recipientID string, msg Message) error {
	body, err := json.Marshal(sendRequest{Recipient: recipient{ID: recipientID}, Message: msg})
	if err != nil {
		return domerrors.NewSendError(recipientID, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"?"+url.Values{"access_token": {c.accessToken}}.Encode(),
		bytes.NewReader(body))
	if err != nil {
		return domerrors.NewSendError(recipientID, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		c.metrics.RecordSend("error", duration)
		return domerrors.NewSendError(recipientID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordSend("rejected", duration)
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WithFields(map[string]any{
			"status":       resp.StatusCode,
			"body":         string(detail),
			"message_kind": msg.Kind(),
		}).WarnContext(ctx, "Send API rejected message")
		return nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	c.metrics.RecordSend("success", duration)
	return nil
}

// SendSequence sends msgs in order and stops at the first failure.
// It returns how many messages were sent.
func (c *Client) SendSequence(ctx context.Context, recipientID string, msgs ...Message) (int, error) {
	for i, msg := range msgs {
		if err := c.Send(ctx, recipientID, msg); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}
