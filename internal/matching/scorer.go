package matching

import (
	"context"

	"github.com/google/uuid"
)

// Result is the compatibility verdict for a proposer/recipient pair.
// Score is 0-100; Compatible reflects the scorer's hard filters (blocked
// pairs, non-overlapping care networks).
type Result struct {
	Score      int  `json:"score"`
	Compatible bool `json:"compatible"`
}

// Scorer answers whether two families may exchange shifts at all.
type Scorer interface {
	Score(ctx context.Context, proposerID, recipientID uuid.UUID) (Result, error)
}

type permissiveScorer struct{}

// NewPermissiveScorer returns a scorer that allows every pairing. Used when no
// scorer endpoint is configured.
func NewPermissiveScorer() Scorer {
	return permissiveScorer{}
}

func (permissiveScorer) Score(context.Context, uuid.UUID, uuid.UUID) (Result, error) {
	return Result{Score: 100, Compatible: true}, nil
}
