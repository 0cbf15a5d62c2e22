package bot

// Outcome summarizes what handling one event achieved.
type Outcome string

const (
	// OutcomeDelivered means every planned message was sent.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeDegraded means every message was sent, but a search failed
	// or found nothing and the fallback template was used.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeAborted means a send failed and the rest of the sequence was skipped.
	OutcomeAborted Outcome = "aborted"
	// OutcomeIgnored means the event required no reply.
	OutcomeIgnored Outcome = "ignored"
)

func (o Outcome) String() string {
	return string(o)
}
