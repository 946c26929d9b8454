package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
	"github.com/careswap-app/careswap-backend/pkg/push"
	"github.com/careswap-app/careswap-backend/pkg/types"
)

type tokenSource interface {
	TokensForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

// Delivery is one logical notification addressed to one recipient. The
// (RecipientID, Type, SubjectID) triple is its deterministic identity: every
// runner that observes the same logical event builds the same triple.
type Delivery struct {
	RecipientID uuid.UUID
	Type        enums.NotificationType
	SubjectID   uuid.UUID
	Title       string
	Message     string
	Link        *string
	Data        types.JSONMap
}

// Dispatcher writes the durable in-app record exactly once per logical event
// and then attempts best-effort push delivery. Push problems are logged and
// never propagate: the durable record is the source of truth.
type Dispatcher struct {
	repo   Repository
	tokens tokenSource
	sender push.Sender
	logg   *logger.Logger
}

// NewDispatcher builds a notification dispatcher.
func NewDispatcher(repo Repository, tokens tokenSource, sender push.Sender, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("device token source required")
	}
	if sender == nil {
		return nil, fmt.Errorf("push sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{repo: repo, tokens: tokens, sender: sender, logg: logg}, nil
}

// Dispatch records the delivery and pushes to the recipient's devices. Only a
// failure to write the durable record is returned; a lost race against another
// runner acks silently, and push never fails the call.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery) error {
	if delivery.RecipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery recipient required")
	}
	if !delivery.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if delivery.SubjectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery subject required")
	}

	logCtx := d.logg.WithFields(ctx, map[string]any{
		"recipient_id": delivery.RecipientID.String(),
		"type":         string(delivery.Type),
		"subject_id":   delivery.SubjectID.String(),
	})

	record := &models.Notification{
		UserID:    delivery.RecipientID,
		Type:      delivery.Type,
		SubjectID: delivery.SubjectID,
		Title:     delivery.Title,
		Message:   delivery.Message,
		Link:      delivery.Link,
		Data:      delivery.Data,
	}
	inserted, err := d.repo.Upsert(ctx, record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store notification")
	}
	if !inserted {
		d.logg.Info(logCtx, "notification already recorded, skipping push")
		return nil
	}

	d.pushToRecipient(logCtx, delivery)
	return nil
}

func (d *Dispatcher) pushToRecipient(ctx context.Context, delivery Delivery) {
	tokens, err := d.tokens.TokensForUsers(ctx, []uuid.UUID{delivery.RecipientID})
	if err != nil {
		d.logg.Error(ctx, "loading device tokens failed", err)
		return
	}
	recipientTokens := tokens[delivery.RecipientID]
	if len(recipientTokens) == 0 {
		return
	}

	data := map[string]string{
		"type":      string(delivery.Type),
		"subjectId": delivery.SubjectID.String(),
	}
	result, err := d.sender.SendMulticast(ctx, push.MulticastMessage{
		Tokens: recipientTokens,
		Notification: push.Notification{
			Title: delivery.Title,
			Body:  delivery.Message,
		},
		Data: data,
	})
	if err != nil {
		d.logg.Error(ctx, "push delivery failed", err)
		return
	}
	if result.SuccessCount > 0 {
		d.logg.Info(d.logg.WithFields(ctx, map[string]any{
			"success_count": result.SuccessCount,
			"failure_count": result.FailureCount,
		}), "push delivered")
	}
}
