package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/logger"
	"github.com/careswap-app/careswap-backend/pkg/outbox"
	"github.com/careswap-app/careswap-backend/pkg/outbox/idempotency"
	"github.com/careswap-app/careswap-backend/pkg/outbox/payloads"
	"github.com/careswap-app/careswap-backend/pkg/types"
)

const shiftNotificationConsumer = "shift-notifications"

const eventTimeLayout = "Mon Jan 2, 15:04 MST"

// Consumer watches shift domain events and fans them out as notifications.
type Consumer struct {
	dispatcher   *Dispatcher
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the shift notification consumer.
func NewConsumer(dispatcher *Dispatcher, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		dispatcher:   dispatcher,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, shiftNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	deliveries, err := deliveriesFor(eventType, envelope)
	if err != nil {
		// Malformed payloads never become deliverable; retrying won't help.
		c.logg.Error(logCtx, "failed to map event to deliveries", err)
		return processResult{ack: true}
	}
	if len(deliveries) == 0 {
		c.logg.Info(logCtx, "event carries no notifications")
		return processResult{ack: true}
	}

	for _, delivery := range deliveries {
		if err := c.dispatcher.Dispatch(ctx, delivery); err != nil {
			c.logg.Error(logCtx, "notification dispatch failed", err)
			_ = c.idempotency.Delete(ctx, shiftNotificationConsumer, eventID)
			return processResult{nack: true}
		}
	}
	return processResult{ack: true}
}

// deliveriesFor maps one domain event to the notifications it implies. Every
// runner that sees the same logical event produces the same (recipient, type,
// subject) triples, so racing runners converge on one durable record each.
func deliveriesFor(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) ([]Delivery, error) {
	switch eventType {
	case enums.EventShiftProposed:
		var payload payloads.ShiftProposedEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		return []Delivery{{
			RecipientID: payload.RecipientID,
			Type:        enums.NotificationTypeShiftProposed,
			SubjectID:   payload.ShiftID,
			Title:       "New shift proposal",
			Message:     fmt.Sprintf("You've been asked to cover a shift starting %s.", payload.StartsAt.Format(eventTimeLayout)),
			Link:        shiftLink(payload.ShiftID),
			Data:        types.JSONMap{"proposerUid": payload.ProposerID.String()},
		}}, nil

	case enums.EventShiftAccepted, enums.EventShiftRejected:
		var payload payloads.ShiftDecisionEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		notificationType := enums.NotificationTypeShiftAccepted
		title := "Shift accepted"
		message := fmt.Sprintf("Your shift on %s was accepted.", payload.StartsAt.Format(eventTimeLayout))
		if eventType == enums.EventShiftRejected {
			notificationType = enums.NotificationTypeShiftRejected
			title = "Shift declined"
			message = fmt.Sprintf("Your shift proposal for %s was declined.", payload.StartsAt.Format(eventTimeLayout))
		}
		return []Delivery{{
			RecipientID: payload.ProposerID,
			Type:        notificationType,
			SubjectID:   payload.ShiftID,
			Title:       title,
			Message:     message,
			Link:        shiftLink(payload.ShiftID),
		}}, nil

	case enums.EventShiftSwapOffered:
		var payload payloads.ShiftSwapOfferedEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		return []Delivery{{
			RecipientID: payload.RecipientID,
			Type:        enums.NotificationTypeSwapProposed,
			SubjectID:   payload.ShiftID,
			Title:       "Swap proposed",
			Message:     fmt.Sprintf("A new time was proposed: %s.", payload.ProposedStartsAt.Format(eventTimeLayout)),
			Link:        shiftLink(payload.ShiftID),
		}}, nil

	case enums.EventShiftSwapClosed:
		var payload payloads.ShiftSwapClosedEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		title := "Swap declined"
		message := "Your proposed time was declined; the original time stands."
		if payload.Accepted {
			title = "Swap accepted"
			message = fmt.Sprintf("The shift now starts %s.", payload.StartsAt.Format(eventTimeLayout))
		}
		return []Delivery{{
			RecipientID: payload.OffererID,
			Type:        enums.NotificationTypeSwapResolved,
			SubjectID:   payload.ShiftID,
			Title:       title,
			Message:     message,
			Link:        shiftLink(payload.ShiftID),
		}}, nil

	case enums.EventShiftCancelled:
		var payload payloads.ShiftCancelledEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		var deliveries []Delivery
		for _, participant := range payload.Participants {
			if participant == payload.CancellerID {
				continue
			}
			deliveries = append(deliveries, Delivery{
				RecipientID: participant,
				Type:        enums.NotificationTypeShiftCancelled,
				SubjectID:   payload.ShiftID,
				Title:       "Shift cancelled",
				Message:     fmt.Sprintf("The shift on %s was cancelled (%s).", payload.StartsAt.Format(eventTimeLayout), payload.Reason.Label()),
				Link:        shiftLink(payload.ShiftID),
			})
		}
		return deliveries, nil

	case enums.EventShiftReminder:
		var payload payloads.ShiftReminderEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		var deliveries []Delivery
		for _, participant := range payload.Participants {
			deliveries = append(deliveries, Delivery{
				RecipientID: participant,
				Type:        enums.NotificationTypeShiftReminder,
				SubjectID:   payload.ShiftID,
				Title:       "Shift starts soon",
				Message:     fmt.Sprintf("Your shift starts at %s.", payload.StartsAt.Format(eventTimeLayout)),
				Link:        shiftLink(payload.ShiftID),
			})
		}
		return deliveries, nil

	case enums.EventShiftCompleted:
		var payload payloads.ShiftCompletedEvent
		if err := envelope.DecodeData(&payload); err != nil {
			return nil, err
		}
		var deliveries []Delivery
		for _, participant := range payload.Participants {
			deliveries = append(deliveries, Delivery{
				RecipientID: participant,
				Type:        enums.NotificationTypeShiftCompleted,
				SubjectID:   payload.ShiftID,
				Title:       "Shift completed",
				Message:     "How did it go? Leave a review for your exchange partner.",
				Link:        reviewLink(payload.ShiftID),
			})
		}
		return deliveries, nil

	default:
		return nil, nil
	}
}

func shiftLink(shiftID uuid.UUID) *string {
	link := fmt.Sprintf("/shifts/%s", shiftID)
	return &link
}

func reviewLink(shiftID uuid.UUID) *string {
	link := fmt.Sprintf("/shifts/%s/review", shiftID)
	return &link
}
