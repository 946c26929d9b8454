package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size applied when the caller omits one.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Cursor marks a position in a (created_at, id) keyset.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// cursorPayload is the wire shape of an encoded cursor. Kept separate from
// Cursor so the token format can evolve without touching callers.
type cursorPayload struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

// NormalizeLimit clamps limit into [1, MaxLimit], defaulting when unset.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer adds one row past the normalized limit so queries can tell
// whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor serializes a cursor into an opaque URL-safe token.
func EncodeCursor(cursor Cursor) string {
	raw, _ := json.Marshal(cursorPayload{
		CreatedAt: cursor.CreatedAt.UTC(),
		ID:        cursor.ID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes a token produced by EncodeCursor. An empty or blank
// token means "first page" and yields a nil cursor with no error.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	if payload.CreatedAt.IsZero() || payload.ID == uuid.Nil {
		return nil, fmt.Errorf("invalid cursor payload")
	}
	return &Cursor{CreatedAt: payload.CreatedAt, ID: payload.ID}, nil
}
