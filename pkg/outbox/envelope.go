package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event. System-generated events
// (reminders, auto-completion) carry no actor.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
// Version applies to the Data schema; the envelope fields themselves never
// change shape.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeData unmarshals the inner event payload into dst.
func (e PayloadEnvelope) DecodeData(dst any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope %s has no data", e.EventID)
	}
	return json.Unmarshal(e.Data, dst)
}
