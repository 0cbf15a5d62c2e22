// Package bot holds the conversation logic: what to answer to a text
// message or a button postback, given the sender's chosen topic.
package bot

import (
	"context"
	"errors"

	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/messenger"
	"github.com/zokybot/zoky-messenger-go/internal/search"
	"github.com/zokybot/zoky-messenger-go/internal/sentry"
	"github.com/zokybot/zoky-messenger-go/internal/session"
)

// Prompt texts.
const (
	showMoreText     = "Show me more"
	chooseTopicText  = "Are you a Sport Lover or Movie Lover?"
	footballPrompt   = "Type a football team name"
	footballCallText = "type a football team name!"
	moviePrompt      = "Type a movie name"
	movieCallText    = "type a movie name!"
)

// Searcher finds a poster URL for a query within a topic.
type Searcher interface {
	Search(ctx context.Context, topic, query string) (string, error)
}

// Sender delivers an ordered list of messages, stopping at the first failure.
type Sender interface {
	SendSequence(ctx context.Context, recipientID string, msgs ...messenger.Message) (int, error)
}

// SessionStore keeps each sender's chosen topic.
type SessionStore interface {
	Get(senderID string) session.Mode
	Set(senderID string, mode session.Mode)
}

// Handler answers messages and postbacks.
type Handler struct {
	searcher  Searcher
	sender    Sender
	sessions  SessionStore
	logger    *logger.Logger
	postbacks map[string]postbackFunc
}

type postbackFunc func(ctx context.Context, senderID string) Outcome

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	Searcher Searcher
	Sender   Sender
	Sessions SessionStore
	Logger   *logger.Logger
}

// NewHandler creates a new conversation handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		searcher: cfg.Searcher,
		sender:   cfg.Sender,
		sessions: cfg.Sessions,
		logger:   cfg.Logger.WithModule("bot"),
	}
	h.postbacks = map[string]postbackFunc{
		messenger.PayloadFootball:   h.chooseTopic(session.ModeFootball, footballPrompt, footballCallText),
		messenger.PayloadMovie:      h.chooseTopic(session.ModeMovie, moviePrompt, movieCallText),
		messenger.PayloadGetStarted: h.offerTopics,
		messenger.PayloadBackToTop:  h.offerTopics,
	}
	return h
}

// topicFor maps a session mode to its search topic.
var topicFor = map[session.Mode]string{
	session.ModeMovie:    search.TopicMovie,
	session.ModeFootball: search.TopicFootball,
}

// HandleMessage answers a text message. With a topic chosen and non-empty
// text it searches for a poster; the reply is the poster or the call
// template, followed by the topic picker.
func (h *Handler) HandleMessage(ctx context.Context, senderID, text string) Outcome {
	response := messenger.CallTemplate("")
	outcome := OutcomeDelivered

	if topic, ok := topicFor[h.sessions.Get(senderID)]; ok && text != "" {
		poster, err := h.searcher.Search(ctx, topic, text)
		if err != nil {
			h.logSearchFailure(ctx, topic, err)
			outcome = OutcomeDegraded
		} else {
			response = messenger.ImageAttachment(poster)
		}
	}

	if !h.send(ctx, senderID, response, messenger.ChoiceTemplate(showMoreText)) {
		return OutcomeAborted
	}
	return outcome
}

// HandlePostback answers a button press. Unknown payloads are ignored.
func (h *Handler) HandlePostback(ctx context.Context, senderID, payload string) Outcome {
	fn, ok := h.postbacks[payload]
	if !ok {
		h.logger.WithField("payload", payload).DebugContext(ctx, "Ignoring unknown postback")
		return OutcomeIgnored
	}
	return fn(ctx, senderID)
}

func (h *Handler) chooseTopic(mode session.Mode, prompt, callText string) postbackFunc {
	return func(ctx context.Context, senderID string) Outcome {
		h.sessions.Set(senderID, mode)
		if !h.send(ctx, senderID, messenger.Text(prompt), messenger.CallTemplate(callText)) {
			return OutcomeAborted
		}
		return OutcomeDelivered
	}
}

func (h *Handler) offerTopics(ctx context.Context, senderID string) Outcome {
	if !h.send(ctx, senderID, messenger.ChoiceTemplate(chooseTopicText)) {
		return OutcomeAborted
	}
	return OutcomeDelivered
}

// send reports whether the whole sequence went out.
func (h *Handler) send(ctx context.Context, senderID string, msgs ...messenger.Message) bool {
	sent, err := h.sender.SendSequence(ctx, senderID, msgs...)
	if err != nil {
		h.logger.WithError(err).
			WithField("sent", sent).
			WithField("planned", len(msgs)).
			ErrorContext(ctx, "Unable to send message")
		sentry.CaptureExceptionWithContext(ctx, err)
		return false
	}
	return true
}

// logSearchFailure logs misses at info and real failures at warn.
func (h *Handler) logSearchFailure(ctx context.Context, topic string, err error) {
	log := h.logger.WithField("topic", topic).WithError(err)

	var searchErr *domerrors.SearchError
	switch {
	case domerrors.IsNoResult(err):
		log.InfoContext(ctx, "Search found no poster")
	case errors.As(err, &searchErr):
		log.WithField("status", searchErr.StatusCode).WarnContext(ctx, "Search request failed")
	default:
		log.WarnContext(ctx, "Search failed")
	}
}
