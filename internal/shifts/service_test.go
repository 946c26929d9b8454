package shifts

import (
	"context"
	"testing"
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

type stubShiftsRepo struct {
	shift   *models.Shift
	created *models.Shift
}

func (s *stubShiftsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubShiftsRepo) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	s.created = shift
	return shift, nil
}

func (s *stubShiftsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	if s.shift == nil || s.shift.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.shift
	return &copied, nil
}

func (s *stubShiftsRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	return s.FindByID(ctx, id)
}

func (s *stubShiftsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.shift == nil || s.shift.ID != id {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			s.shift.Status = value.(enums.ShiftStatus)
		case "swap_details":
			if value == nil {
				s.shift.SwapDetails = nil
			} else {
				s.shift.SwapDetails = value.(*types.SwapDetails)
			}
		case "starts_at":
			at := value.(time.Time)
			s.shift.StartsAt = &at
		case "ends_at":
			at := value.(time.Time)
			s.shift.EndsAt = &at
		case "cancelled_at":
			at := value.(time.Time)
			s.shift.CancelledAt = &at
		case "cancelled_by":
			by := value.(uuid.UUID)
			s.shift.CancelledBy = &by
		case "cancel_reason_code":
			code := value.(enums.CancelReason)
			s.shift.CancelReasonCode = &code
		case "cancel_reason_text":
			if text, ok := value.(*string); ok {
				s.shift.CancelReasonText = text
			}
		case "legacy_date":
			s.shift.LegacyDate = nil
		case "legacy_start_time":
			s.shift.LegacyStart = nil
		case "legacy_end_time":
			s.shift.LegacyEnd = nil
		}
	}
	return nil
}

func (s *stubShiftsRepo) ListForUser(ctx context.Context, userID uuid.UUID, filters ListFilters) (*ShiftList, error) {
	return &ShiftList{}, nil
}

func (s *stubShiftsRepo) FindReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	return nil, nil
}

func (s *stubShiftsRepo) FindCompletionCandidates(ctx context.Context, before time.Time) ([]models.Shift, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (r *recordingEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

type denyScorer struct{}

func (denyScorer) Score(context.Context, uuid.UUID, uuid.UUID) (matching.Result, error) {
	return matching.Result{Score: 0, Compatible: false}, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo Repository, emitter outboxEmitter, scorer matching.Scorer) *service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, emitter, scorer)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	typed := svc.(*service)
	typed.now = fixedNow
	return typed
}

func acceptedShift(proposerID, accepterID uuid.UUID) *models.Shift {
	start := fixedNow().Add(48 * time.Hour)
	end := start.Add(4 * time.Hour)
	return &models.Shift{
		ID:                      uuid.New(),
		ProposerID:              proposerID,
		AccepterID:              accepterID,
		ParticipantIDs:          dbtypes.UUIDArray{proposerID, accepterID},
		StartsAt:                &start,
		EndsAt:                  &end,
		Timezone:                "UTC",
		Status:                  enums.ShiftStatusAccepted,
		CancellationWindowHours: 4,
	}
}

func TestProposeCreatesShiftAndEmitsEvent(t *testing.T) {
	repo := &stubShiftsRepo{}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	proposerID := uuid.New()
	recipientID := uuid.New()
	shift, err := svc.Propose(context.Background(), ProposeInput{
		ProposerID:  proposerID,
		RecipientID: recipientID,
		StartsAt:    fixedNow().Add(48 * time.Hour),
		EndsAt:      fixedNow().Add(52 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if shift.Status != enums.ShiftStatusProposed {
		t.Fatalf("unexpected status %s", shift.Status)
	}
	if len(shift.ParticipantIDs) != 2 || !shift.ParticipantIDs.Contains(proposerID) || !shift.ParticipantIDs.Contains(recipientID) {
		t.Fatalf("participants malformed: %v", shift.ParticipantIDs)
	}
	if shift.CancellationWindowHours != DefaultCancellationWindowHours {
		t.Fatalf("expected default cutoff, got %d", shift.CancellationWindowHours)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventShiftProposed {
		t.Fatalf("expected one shift_proposed event, got %+v", emitter.events)
	}
}

func TestProposeRejectsIncompatiblePair(t *testing.T) {
	repo := &stubShiftsRepo{}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, denyScorer{})

	_, err := svc.Propose(context.Background(), ProposeInput{
		ProposerID:  uuid.New(),
		RecipientID: uuid.New(),
		StartsAt:    fixedNow().Add(48 * time.Hour),
		EndsAt:      fixedNow().Add(52 * time.Hour),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("shift should not be created for an incompatible pair")
	}
}

func TestProposeRejectsInvalidWindow(t *testing.T) {
	svc := newTestService(t, &stubShiftsRepo{}, &recordingEmitter{}, nil)

	_, err := svc.Propose(context.Background(), ProposeInput{
		ProposerID:  uuid.New(),
		RecipientID: uuid.New(),
		StartsAt:    fixedNow().Add(52 * time.Hour),
		EndsAt:      fixedNow().Add(48 * time.Hour),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideAcceptByAccepter(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	shift.Status = enums.ShiftStatusProposed
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	updated, err := svc.Decide(context.Background(), DecideInput{
		ShiftID:     shift.ID,
		ActorUserID: accepterID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if updated.Status != enums.ShiftStatusAccepted {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventShiftAccepted {
		t.Fatalf("expected shift_accepted event, got %+v", emitter.events)
	}
}

func TestDecideByProposerForbidden(t *testing.T) {
	proposerID := uuid.New()
	shift := acceptedShift(proposerID, uuid.New())
	shift.Status = enums.ShiftStatusProposed
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	_, err := svc.Decide(context.Background(), DecideInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		Accept:      true,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.shift.Status != enums.ShiftStatusProposed {
		t.Fatalf("status should be untouched, got %s", repo.shift.Status)
	}
}

func TestDecideAgainstMovedStatusIsConflict(t *testing.T) {
	// Models the losing side of two concurrent accepts: by the time the
	// second transaction re-reads the row, the status has already moved.
	accepterID := uuid.New()
	shift := acceptedShift(uuid.New(), accepterID)
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	_, err := svc.Decide(context.Background(), DecideInput{
		ShiftID:     shift.ID,
		ActorUserID: accepterID,
		Accept:      true,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.shift.Status != enums.ShiftStatusAccepted {
		t.Fatalf("status should remain accepted, got %s", repo.shift.Status)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no event expected, got %+v", emitter.events)
	}
}

func TestDecideCommitsWhenScheduleUnresolvable(t *testing.T) {
	// Rows imported from the old scheduler can carry garbage date strings;
	// the decision must still commit, with zero instants in the event.
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	shift.Status = enums.ShiftStatusProposed
	shift.StartsAt = nil
	shift.EndsAt = nil
	date := "not-a-date"
	startClock := "18:00"
	endClock := "22:00"
	shift.LegacyDate = &date
	shift.LegacyStart = &startClock
	shift.LegacyEnd = &endClock
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	updated, err := svc.Decide(context.Background(), DecideInput{
		ShiftID:     shift.ID,
		ActorUserID: accepterID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if updated.Status != enums.ShiftStatusAccepted {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %+v", emitter.events)
	}
	payload, ok := emitter.events[0].Data.(payloads.ShiftDecisionEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", emitter.events[0].Data)
	}
	if !payload.StartsAt.IsZero() || !payload.EndsAt.IsZero() {
		t.Fatalf("expected zero instants for unresolvable schedule, got %+v", payload)
	}
}

func TestSwapRoundTripAppliesNewWindow(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	newStart := fixedNow().Add(72 * time.Hour)
	newEnd := newStart.Add(3 * time.Hour)
	if _, err := svc.ProposeSwap(context.Background(), SwapInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		StartsAt:    newStart,
		EndsAt:      newEnd,
	}); err != nil {
		t.Fatalf("ProposeSwap: %v", err)
	}
	if repo.shift.Status != enums.ShiftStatusSwapProposed || repo.shift.SwapDetails == nil {
		t.Fatalf("swap not recorded: %+v", repo.shift)
	}
	if repo.shift.SwapDetails.ProposerID != proposerID {
		t.Fatalf("swap proposer mismatch")
	}

	updated, err := svc.RespondSwap(context.Background(), SwapResponseInput{
		ShiftID:     shift.ID,
		ActorUserID: accepterID,
		Accept:      true,
	})
	if err != nil {
		t.Fatalf("RespondSwap: %v", err)
	}
	if updated.Status != enums.ShiftStatusAccepted {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if updated.SwapDetails != nil {
		t.Fatalf("swap details must be cleared after resolution")
	}
	if !updated.StartsAt.Equal(newStart) || !updated.EndsAt.Equal(newEnd) {
		t.Fatalf("window not overwritten: %v - %v", updated.StartsAt, updated.EndsAt)
	}
	if len(emitter.events) != 2 || emitter.events[1].EventType != enums.EventShiftSwapClosed {
		t.Fatalf("expected swap_offered then swap_closed, got %+v", emitter.events)
	}
}

func TestSwapDeclineKeepsOriginalWindow(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	originalStart := *shift.StartsAt
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	if _, err := svc.ProposeSwap(context.Background(), SwapInput{
		ShiftID:     shift.ID,
		ActorUserID: accepterID,
		StartsAt:    fixedNow().Add(96 * time.Hour),
		EndsAt:      fixedNow().Add(99 * time.Hour),
	}); err != nil {
		t.Fatalf("ProposeSwap: %v", err)
	}

	updated, err := svc.RespondSwap(context.Background(), SwapResponseInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		Accept:      false,
	})
	if err != nil {
		t.Fatalf("RespondSwap: %v", err)
	}
	if updated.Status != enums.ShiftStatusAccepted || updated.SwapDetails != nil {
		t.Fatalf("decline should revert to accepted with no swap details")
	}
	if !updated.StartsAt.Equal(originalStart) {
		t.Fatalf("original window must be intact")
	}
}

func TestSwapDeclineCommitsWhenScheduleUnresolvable(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	shift.Status = enums.ShiftStatusSwapProposed
	shift.StartsAt = nil
	shift.EndsAt = nil
	date := "not-a-date"
	startClock := "18:00"
	shift.LegacyDate = &date
	shift.LegacyStart = &startClock
	shift.SwapDetails = &types.SwapDetails{
		ProposerID: accepterID,
		StartsAt:   fixedNow().Add(96 * time.Hour),
		EndsAt:     fixedNow().Add(99 * time.Hour),
		ProposedAt: fixedNow(),
	}
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	updated, err := svc.RespondSwap(context.Background(), SwapResponseInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		Accept:      false,
	})
	if err != nil {
		t.Fatalf("RespondSwap: %v", err)
	}
	if updated.Status != enums.ShiftStatusAccepted || updated.SwapDetails != nil {
		t.Fatalf("decline should revert to accepted with no swap details")
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %+v", emitter.events)
	}
	payload, ok := emitter.events[0].Data.(payloads.ShiftSwapClosedEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", emitter.events[0].Data)
	}
	if !payload.StartsAt.IsZero() {
		t.Fatalf("expected zero instants for unresolvable schedule, got %+v", payload)
	}
}

func TestSwapProposerCannotAnswerOwnOffer(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	if _, err := svc.ProposeSwap(context.Background(), SwapInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		StartsAt:    fixedNow().Add(96 * time.Hour),
		EndsAt:      fixedNow().Add(99 * time.Hour),
	}); err != nil {
		t.Fatalf("ProposeSwap: %v", err)
	}

	_, err := svc.RespondSwap(context.Background(), SwapResponseInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		Accept:      true,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelWithinWindowSucceeds(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	result, err := svc.Cancel(context.Background(), CancelInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		ReasonCode:  enums.CancelReasonIllness,
	})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if result.OtherUserID != accepterID {
		t.Fatalf("other user mismatch")
	}
	if result.CutoffHours != 4 {
		t.Fatalf("unexpected cutoff %d", result.CutoffHours)
	}
	if repo.shift.Status != enums.ShiftStatusCancelled {
		t.Fatalf("status not cancelled: %s", repo.shift.Status)
	}
	if repo.shift.CancelledBy == nil || *repo.shift.CancelledBy != proposerID {
		t.Fatalf("cancelled_by not recorded")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventShiftCancelled {
		t.Fatalf("expected shift_cancelled event, got %+v", emitter.events)
	}
}

func TestCancelPastCutoffFailsAndLeavesStatus(t *testing.T) {
	proposerID := uuid.New()
	shift := acceptedShift(proposerID, uuid.New())
	start := fixedNow().Add(3 * time.Hour)
	end := start.Add(4 * time.Hour)
	shift.StartsAt = &start
	shift.EndsAt = &end
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	_, err := svc.Cancel(context.Background(), CancelInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		ReasonCode:  enums.CancelReasonIllness,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected cutoff validation error, got %v", err)
	}
	if repo.shift.Status != enums.ShiftStatusAccepted {
		t.Fatalf("status must be untouched, got %s", repo.shift.Status)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no event expected, got %+v", emitter.events)
	}
}

func TestCancelByNonParticipantForbidden(t *testing.T) {
	shift := acceptedShift(uuid.New(), uuid.New())
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	_, err := svc.Cancel(context.Background(), CancelInput{
		ShiftID:     shift.ID,
		ActorUserID: uuid.New(),
		ReasonCode:  enums.CancelReasonOther,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelWhileSwapPendingIsConflict(t *testing.T) {
	proposerID := uuid.New()
	accepterID := uuid.New()
	shift := acceptedShift(proposerID, accepterID)
	shift.Status = enums.ShiftStatusSwapProposed
	shift.SwapDetails = &types.SwapDetails{
		ProposerID: accepterID,
		StartsAt:   fixedNow().Add(96 * time.Hour),
		EndsAt:     fixedNow().Add(99 * time.Hour),
		ProposedAt: fixedNow(),
	}
	repo := &stubShiftsRepo{shift: shift}
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter, nil)

	_, err := svc.Cancel(context.Background(), CancelInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		ReasonCode:  enums.CancelReasonOther,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.shift.Status != enums.ShiftStatusSwapProposed || repo.shift.SwapDetails == nil {
		t.Fatalf("pending swap must be untouched: %+v", repo.shift)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no event expected, got %+v", emitter.events)
	}
}

func TestCancelCompletedShiftIsConflict(t *testing.T) {
	proposerID := uuid.New()
	shift := acceptedShift(proposerID, uuid.New())
	shift.Status = enums.ShiftStatusCompleted
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	_, err := svc.Cancel(context.Background(), CancelInput{
		ShiftID:     shift.ID,
		ActorUserID: proposerID,
		ReasonCode:  enums.CancelReasonOther,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetRequiresParticipant(t *testing.T) {
	shift := acceptedShift(uuid.New(), uuid.New())
	repo := &stubShiftsRepo{shift: shift}
	svc := newTestService(t, repo, &recordingEmitter{}, nil)

	if _, err := svc.Get(context.Background(), shift.ID, uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.New(), uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
