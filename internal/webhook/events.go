package webhook

// Envelope is the body of a webhook POST.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the events of one page. The platform batches at most one
// messaging event per entry in practice; only the first is processed.
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is a message or postback from a user.
type MessagingEvent struct {
	Sender    Party           `json:"sender"`
	Recipient Party           `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *InboundMessage `json:"message,omitempty"`
	Postback  *Postback       `json:"postback,omitempty"`
}

// Party identifies a sender or recipient by page-scoped id.
type Party struct {
	ID string `json:"id"`
}

// InboundMessage is a received text message.
type InboundMessage struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// Postback is a button press.
type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// Event types used in logs and metrics.
const (
	EventMessage  = "message"
	EventPostback = "postback"
	EventEcho     = "echo"
	EventUnknown  = "unknown"
)

// Type classifies the event; message wins over postback.
func (e MessagingEvent) Type() string {
	switch {
	case e.Message != nil && e.Message.IsEcho:
		return EventEcho
	case e.Message != nil:
		return EventMessage
	case e.Postback != nil:
		return EventPostback
	default:
		return EventUnknown
	}
}
