// Package webhook implements the Messenger webhook endpoint: the
// subscription handshake and delivery of messaging events to the bot.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zokybot/zoky-messenger-go/internal/bot"
	"github.com/zokybot/zoky-messenger-go/internal/config"
	"github.com/zokybot/zoky-messenger-go/internal/ctxutil"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/metrics"
	"github.com/zokybot/zoky-messenger-go/internal/sentry"
)

const (
	pageObject     = "page"
	subscribeMode  = "subscribe"
	ackBody        = "EVENT_RECEIVED"
	defaultMaxBody = 1 << 20
)

// EventHandler answers routed events.
type EventHandler interface {
	HandleMessage(ctx context.Context, senderID, text string) bot.Outcome
	HandlePostback(ctx context.Context, senderID, payload string) bot.Outcome
}

// Handler handles Messenger webhook requests
type Handler struct {
	verifyToken       string
	appSecret         string
	events            EventHandler
	metrics           *metrics.Metrics
	logger            *logger.Logger
	processingTimeout time.Duration
	maxBodyBytes      int64
	wg                sync.WaitGroup // in-flight batches
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	VerifyToken string
	Events      EventHandler
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig, opts ...HandlerOption) *Handler {
	h := &Handler{
		verifyToken:       cfg.VerifyToken,
		events:            cfg.Events,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger.WithModule("webhook"),
		processingTimeout: config.WebhookProcessing,
		maxBodyBytes:      defaultMaxBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Verify answers the subscription handshake (GET /webhook).
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		h.metrics.RecordVerification("missing_params")
		h.logger.WithField("has_mode", mode != "").
			WithField("has_token", token != "").
			Warn("Webhook verification missing hub.mode or hub.verify_token")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if mode != subscribeMode || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		h.metrics.RecordVerification("forbidden")
		h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	h.metrics.RecordVerification("success")
	h.logger.Info("WEBHOOK_VERIFIED")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(challenge))
}

// Receive accepts a batch of events (POST /webhook). Page deliveries are
// acknowledged with 200 before any processing; everything else gets 404.
func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		h.reject(c, http.StatusNotFound, "malformed", err)
		return
	}

	if h.appSecret != "" && !validSignature(h.appSecret, body, c.GetHeader(signatureHeader)) {
		h.reject(c, http.StatusForbidden, "invalid_signature", nil)
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.reject(c, http.StatusNotFound, "malformed", err)
		return
	}
	if envelope.Object != pageObject {
		h.reject(c, http.StatusNotFound, "not_page", fmt.Errorf("object %q", envelope.Object))
		return
	}

	requestID := c.GetString(ctxutil.GinRequestIDKey)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := h.logger.WithRequestID(requestID)

	batch := make([]routedEvent, 0, len(envelope.Entry))
	dropped := 0
	for _, entry := range envelope.Entry {
		if len(entry.Messaging) == 0 {
			continue
		}
		if extra := len(entry.Messaging) - 1; extra > 0 {
			dropped += extra
			log.WithField("page_id", entry.ID).
				WithField("dropped", extra).
				Debug("Entry carried more than one messaging event; processing the first only")
		}
		batch = append(batch, routedEvent{pageID: entry.ID, event: entry.Messaging[0]})
	}
	h.metrics.RecordDroppedEvents(dropped)

	c.String(http.StatusOK, ackBody)

	if len(batch) == 0 {
		return
	}

	h.wg.Go(func() {
		ctx, cancel := context.WithTimeout(ctxutil.WithRequestID(context.Background(), requestID), h.processingTimeout)
		defer cancel()

		for _, ev := range batch {
			h.dispatch(ctx, ev)
		}
	})
}

type routedEvent struct {
	pageID string
	event  MessagingEvent
}

// dispatch routes one event. A panic is contained to the event.
func (h *Handler) dispatch(ctx context.Context, ev routedEvent) {
	eventType := ev.event.Type()
	senderID := ev.event.Sender.ID
	ctx = ctxutil.WithSenderID(ctxutil.WithPageID(ctx, ev.pageID), senderID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			h.logger.WithField("panic", r).
				WithField("event_type", eventType).
				WithField("stack", string(debug.Stack())).
				ErrorContext(ctx, "Panic in async event processing")
			h.metrics.RecordWebhookEvent(eventType, "panic", time.Since(start).Seconds())
			sentry.CaptureRecovered(ctx, r, map[string]string{"event_type": eventType})
		}
	}()

	var outcome bot.Outcome
	switch eventType {
	case EventMessage:
		outcome = h.events.HandleMessage(ctx, senderID, ev.event.Message.Text)
	case EventPostback:
		outcome = h.events.HandlePostback(ctx, senderID, ev.event.Postback.Payload)
	default:
		// Echoes of the page's own messages and unsupported events (reads,
		// deliveries) need no reply.
		outcome = bot.OutcomeIgnored
	}

	duration := time.Since(start)
	h.metrics.RecordWebhookEvent(eventType, outcome.String(), duration.Seconds())
	h.logger.WithField("event_type", eventType).
		WithField("outcome", outcome.String()).
		WithField("duration_ms", duration.Milliseconds()).
		DebugContext(ctx, "Event processed")
}

func (h *Handler) reject(c *gin.Context, status int, reason string, err error) {
	h.metrics.RecordWebhookRejected(reason)
	log := h.logger.WithField("reason", reason).WithField("status", status)
	if err != nil {
		log = log.WithError(err)
	}
	log.Warn("Webhook delivery rejected")
	c.AbortWithStatus(status)
}

// Shutdown waits for in-flight batches to finish or ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
