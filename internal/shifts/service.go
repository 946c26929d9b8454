package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/internal/matching"
	"github.com/careswap-app/careswap-backend/pkg/db/models"
	dbtypes "github.com/careswap-app/careswap-backend/pkg/db/types"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/outbox"
	"github.com/careswap-app/careswap-backend/pkg/outbox/payloads"
	"github.com/careswap-app/careswap-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines shift lifecycle operations.
type Service interface {
	Propose(ctx context.Context, input ProposeInput) (*models.Shift, error)
	Decide(ctx context.Context, input DecideInput) (*models.Shift, error)
	ProposeSwap(ctx context.Context, input SwapInput) (*models.Shift, error)
	RespondSwap(ctx context.Context, input SwapResponseInput) (*models.Shift, error)
	Cancel(ctx context.Context, input CancelInput) (*CancelResult, error)
	Get(ctx context.Context, shiftID, actorUserID uuid.UUID) (*models.Shift, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filters ListFilters) (*ShiftList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	scorer matching.Scorer
	now    func() time.Time
}

// NewService builds a shift service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter, scorer matching.Scorer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shifts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if scorer == nil {
		scorer = matching.NewPermissiveScorer()
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: emitter,
		scorer: scorer,
		now:    time.Now,
	}, nil
}

func (s *service) Propose(ctx context.Context, input ProposeInput) (*models.Shift, error) {
	if input.ProposerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if input.RecipientID == input.ProposerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot propose a shift to yourself")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift window must have start before end")
	}
	if !input.StartsAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift must start in the future")
	}

	verdict, err := s.scorer.Score(ctx, input.ProposerID, input.RecipientID)
	if err != nil {
		return nil, err
	}
	if !verdict.Compatible {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pair is not eligible for shift exchange")
	}

	tz := input.Timezone
	if tz == "" {
		tz = "UTC"
	}
	start := input.StartsAt.UTC()
	end := input.EndsAt.UTC()
	shift := &models.Shift{
		ProposerID:     input.ProposerID,
		AccepterID:     input.RecipientID,
		ParticipantIDs: dbtypes.UUIDArray{input.ProposerID, input.RecipientID},
		StartsAt:       &start,
		EndsAt:         &end,
		Timezone:       tz,
		Status:         enums.ShiftStatusProposed,
	}
	if input.CancellationWindowHours > 0 {
		shift.CancellationWindowHours = input.CancellationWindowHours
	} else {
		shift.CancellationWindowHours = DefaultCancellationWindowHours
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, shift)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shift")
		}
		shift = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShiftProposed,
			AggregateType: enums.AggregateShift,
			AggregateID:   shift.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: input.ProposerID},
			Data: payloads.ShiftProposedEvent{
				ShiftID:     shift.ID,
				ProposerID:  shift.ProposerID,
				RecipientID: shift.AccepterID,
				StartsAt:    start,
				EndsAt:      end,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.Shift, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target := enums.ShiftStatusAccepted
	eventType := enums.EventShiftAccepted
	if !input.Accept {
		target = enums.ShiftStatusRejected
		eventType = enums.EventShiftRejected
	}

	var shift *models.Shift
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockShift(ctx, repo, input.ShiftID)
		if err != nil {
			return err
		}
		if current.AccepterID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the addressed participant can decide a proposal")
		}
		if err := CheckTransition(current.Status, target); err != nil {
			return err
		}

		if err := repo.Update(ctx, current.ID, map[string]any{"status": target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shift status")
		}
		current.Status = target
		shift = current

		window := eventWindow(current)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.ShiftDecisionEvent{
				ShiftID:    current.ID,
				ProposerID: current.ProposerID,
				DeciderID:  input.ActorUserID,
				Status:     target,
				StartsAt:   window.StartsAt,
				EndsAt:     window.EndsAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *service) ProposeSwap(ctx context.Context, input SwapInput) (*models.Shift, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "swap window must have start before end")
	}

	var shift *models.Shift
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockShift(ctx, repo, input.ShiftID)
		if err != nil {
			return err
		}
		if !current.ParticipantIDs.Contains(input.ActorUserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "actor is not a shift participant")
		}
		if err := CheckTransition(current.Status, enums.ShiftStatusSwapProposed); err != nil {
			return err
		}

		now := s.now().UTC()
		details := &types.SwapDetails{
			ProposerID: input.ActorUserID,
			StartsAt:   input.StartsAt.UTC(),
			EndsAt:     input.EndsAt.UTC(),
			ProposedAt: now,
		}
		updates := map[string]any{
			"status":       enums.ShiftStatusSwapProposed,
			"swap_details": details,
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shift for swap")
		}
		current.Status = enums.ShiftStatusSwapProposed
		current.SwapDetails = details
		shift = current

		recipient, ok := current.ParticipantIDs.Other(input.ActorUserID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal, "shift participants malformed")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShiftSwapOffered,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.ShiftSwapOfferedEvent{
				ShiftID:          current.ID,
				ProposerID:       input.ActorUserID,
				RecipientID:      recipient,
				ProposedStartsAt: details.StartsAt,
				ProposedEndsAt:   details.EndsAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *service) RespondSwap(ctx context.Context, input SwapResponseInput) (*models.Shift, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var shift *models.Shift
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockShift(ctx, repo, input.ShiftID)
		if err != nil {
			return err
		}
		if !current.ParticipantIDs.Contains(input.ActorUserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "actor is not a shift participant")
		}
		if err := CheckTransition(current.Status, enums.ShiftStatusAccepted); err != nil {
			return err
		}
		if current.SwapDetails == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no swap offer pending")
		}
		if current.SwapDetails.ProposerID == input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "swap proposer cannot answer their own offer")
		}
		offererID := current.SwapDetails.ProposerID

		updates := map[string]any{
			"status":       enums.ShiftStatusAccepted,
			"swap_details": nil,
		}
		if input.Accept {
			updates["starts_at"] = current.SwapDetails.StartsAt
			updates["ends_at"] = current.SwapDetails.EndsAt
			// Swap acceptance makes the absolute window authoritative.
			updates["legacy_date"] = nil
			updates["legacy_start_time"] = nil
			updates["legacy_end_time"] = nil
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve swap offer")
		}
		if input.Accept {
			starts := current.SwapDetails.StartsAt
			ends := current.SwapDetails.EndsAt
			current.StartsAt = &starts
			current.EndsAt = &ends
			current.LegacyDate = nil
			current.LegacyStart = nil
			current.LegacyEnd = nil
		}
		current.Status = enums.ShiftStatusAccepted
		current.SwapDetails = nil
		shift = current

		window := eventWindow(current)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShiftSwapClosed,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.ShiftSwapClosedEvent{
				ShiftID:     current.ID,
				OffererID:   offererID,
				ResponderID: input.ActorUserID,
				Accepted:    input.Accept,
				Status:      enums.ShiftStatusAccepted,
				StartsAt:    window.StartsAt,
				EndsAt:      window.EndsAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*CancelResult, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ReasonCode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cancellation reason")
	}

	var result *CancelResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockShift(ctx, repo, input.ShiftID)
		if err != nil {
			return err
		}
		if !current.ParticipantIDs.Contains(input.ActorUserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "actor is not a shift participant")
		}
		if err := CheckTransition(current.Status, enums.ShiftStatusCancelled); err != nil {
			return err
		}

		now := s.now().UTC()
		if err := CheckCancellationCutoff(current, now); err != nil {
			return err
		}

		updates := map[string]any{
			"status":             enums.ShiftStatusCancelled,
			"cancelled_at":       now,
			"cancelled_by":       input.ActorUserID,
			"cancel_reason_code": input.ReasonCode,
			"cancel_reason_text": input.ReasonText,
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel shift")
		}

		other, ok := current.ParticipantIDs.Other(input.ActorUserID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal, "shift participants malformed")
		}
		result = &CancelResult{
			ShiftID:     current.ID,
			OtherUserID: other,
			CutoffHours: EffectiveCutoffHours(current),
		}

		start, err := ResolveStart(current)
		if err != nil {
			return err
		}
		note := ""
		if input.ReasonText != nil {
			note = *input.ReasonText
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShiftCancelled,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.ShiftCancelledEvent{
				ShiftID:      current.ID,
				CancellerID:  input.ActorUserID,
				Reason:       input.ReasonCode,
				Note:         note,
				CancelledAt:  now,
				StartsAt:     start,
				Participants: current.ParticipantIDs,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, shiftID, actorUserID uuid.UUID) (*models.Shift, error) {
	if shiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shift")
	}
	if !shift.ParticipantIDs.Contains(actorUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "actor is not a shift participant")
	}
	return shift, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, filters ListFilters) (*ShiftList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListForUser(ctx, userID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shifts")
	}
	return list, nil
}

func (s *service) lockShift(ctx context.Context, repo Repository, shiftID uuid.UUID) (*models.Shift, error) {
	shift, err := repo.FindByIDForUpdate(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shift")
	}
	return shift, nil
}
