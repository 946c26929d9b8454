package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/careswap-app/careswap-backend/pkg/enums"
)

// DecoderFunc turns a raw envelope payload into a typed event value.
type DecoderFunc func(payload json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, payload version) pairs to decoders so a
// consumer can keep handling old payload versions after the schema moves on.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]DecoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]DecoderFunc)}
}

// Register installs a decoder for the given event type and payload version,
// replacing any previous registration.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder DecoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode dispatches payload to the registered decoder. Unknown combinations
// are an error; the caller decides whether that is terminal or retryable.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()

	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return decoder(payload)
}
