package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies what produced the event. Settlement events are caused
// by a gateway delivery rather than a user.
type ActorRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
