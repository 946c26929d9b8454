package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/internal/shifts"
	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/logger"
	"github.com/careswap-app/careswap-backend/pkg/outbox"
	"github.com/careswap-app/careswap-backend/pkg/outbox/payloads"
)

const (
	defaultReminderLead   = time.Hour
	defaultReminderWindow = 5 * time.Minute
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sweepCandidateReader interface {
	FindReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Shift, error)
	FindCompletionCandidates(ctx context.Context, before time.Time) ([]models.Shift, error)
}

type transactionalShiftRepo interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type shiftRepoFactory func(tx *gorm.DB) transactionalShiftRepo

func defaultShiftRepo(tx *gorm.DB) transactionalShiftRepo {
	return shifts.NewRepository(tx)
}

// SweepSummary reports what one reconciliation pass saw and did.
type SweepSummary struct {
	StartReminderCandidates int `json:"startReminderCandidates"`
	StartRemindersSent      int `json:"startRemindersSent"`
	CompletedCandidates     int `json:"completedCandidates"`
	CompletedMarked         int `json:"completedMarked"`
}

// ShiftSweepJobParams configure the shift reconciliation sweep.
type ShiftSweepJobParams struct {
	Logger         *logger.Logger
	DB             txRunner
	Shifts         sweepCandidateReader
	Outbox         outboxEmitter
	RepoFactory    shiftRepoFactory
	ReminderLead   time.Duration
	ReminderWindow time.Duration
}

// NewShiftSweepJob builds the job that sends start reminders and closes out
// finished shifts.
func NewShiftSweepJob(params ShiftSweepJobParams) (*ShiftSweepJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Shifts == nil {
		return nil, fmt.Errorf("shifts reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultShiftRepo
	}
	lead := params.ReminderLead
	if lead <= 0 {
		lead = defaultReminderLead
	}
	window := params.ReminderWindow
	if window <= 0 {
		window = defaultReminderWindow
	}
	return &ShiftSweepJob{
		logg:           params.Logger,
		db:             params.DB,
		shifts:         params.Shifts,
		outbox:         params.Outbox,
		repoFactory:    repoFactory,
		reminderLead:   lead,
		reminderWindow: window,
		now:            time.Now,
	}, nil
}

// ShiftSweepJob reconciles shift state against the clock: it is the safety
// net behind the event-driven path, so every step must be idempotent.
type ShiftSweepJob struct {
	logg           *logger.Logger
	db             txRunner
	shifts         sweepCandidateReader
	outbox         outboxEmitter
	repoFactory    shiftRepoFactory
	reminderLead   time.Duration
	reminderWindow time.Duration
	now            func() time.Time
}

func (j *ShiftSweepJob) Name() string { return "shift-sweep" }

func (j *ShiftSweepJob) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx)
	return err
}

// Sweep runs one reconciliation pass and reports the counts. Both scans run
// even when the first fails.
func (j *ShiftSweepJob) Sweep(ctx context.Context) (*SweepSummary, error) {
	summary := &SweepSummary{}
	var errs []error
	if err := j.sendStartReminders(ctx, summary); err != nil {
		errs = append(errs, err)
	}
	if err := j.completeFinishedShifts(ctx, summary); err != nil {
		errs = append(errs, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"reminder_candidates":  summary.StartReminderCandidates,
		"reminders_sent":       summary.StartRemindersSent,
		"completed_candidates": summary.CompletedCandidates,
		"completed_marked":     summary.CompletedMarked,
	})
	j.logg.Info(logCtx, "shift sweep complete")
	return summary, multierr.Combine(errs...)
}

func (j *ShiftSweepJob) sendStartReminders(ctx context.Context, summary *SweepSummary) error {
	now := j.now().UTC()
	from := now.Add(j.reminderLead - j.reminderWindow)
	to := now.Add(j.reminderLead)

	candidates, err := j.shifts.FindReminderCandidates(ctx, from, to)
	if err != nil {
		return fmt.Errorf("query reminder candidates: %w", err)
	}
	for _, candidate := range candidates {
		sent, inWindow, err := j.remindShift(ctx, candidate.ID, from, to)
		if err != nil {
			return err
		}
		if inWindow {
			summary.StartReminderCandidates++
		}
		if sent {
			summary.StartRemindersSent++
		}
	}
	return nil
}

// remindShift stamps the reminder flag and queues the event in one
// transaction, re-reading the row under lock so concurrent sweeps and user
// actions cannot double-send.
func (j *ShiftSweepJob) remindShift(ctx context.Context, shiftID uuid.UUID, from, to time.Time) (sent, inWindow bool, err error) {
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByIDForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if current.Status != enums.ShiftStatusAccepted || current.StartReminderSentAt != nil {
			return nil
		}
		start, err := shifts.ResolveStart(current)
		if err != nil {
			// Unresolvable schedules are data bugs; skip rather than wedge the sweep.
			j.logg.Error(j.logg.WithShiftID(ctx, shiftID.String()), "skipping reminder for unresolvable schedule", err)
			return nil
		}
		start = start.UTC()
		// The scan window is inclusive on both ends; a shift starting exactly
		// at now+lead must not slip past every cycle.
		if start.Before(from) || start.After(to) {
			return nil
		}
		inWindow = true

		now := j.now().UTC()
		if err := repo.Update(ctx, current.ID, map[string]any{"start_reminder_sent_at": now}); err != nil {
			return fmt.Errorf("stamp reminder: %w", err)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventShiftReminder,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ShiftReminderEvent{
				ShiftID:      current.ID,
				StartsAt:     start,
				Participants: current.ParticipantIDs,
			},
		}
		if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return err
		}
		sent = true
		return nil
	})
	return sent, inWindow, err
}

func (j *ShiftSweepJob) completeFinishedShifts(ctx context.Context, summary *SweepSummary) error {
	now := j.now().UTC()
	candidates, err := j.shifts.FindCompletionCandidates(ctx, now)
	if err != nil {
		return fmt.Errorf("query completion candidates: %w", err)
	}
	for _, candidate := range candidates {
		marked, finished, err := j.completeShift(ctx, candidate.ID, now)
		if err != nil {
			return err
		}
		if finished {
			summary.CompletedCandidates++
		}
		if marked {
			summary.CompletedMarked++
		}
	}
	return nil
}

func (j *ShiftSweepJob) completeShift(ctx context.Context, shiftID uuid.UUID, now time.Time) (marked, finished bool, err error) {
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByIDForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if current.Status != enums.ShiftStatusAccepted {
			return nil
		}
		window, err := shifts.ResolveWindow(current)
		if err != nil {
			j.logg.Error(j.logg.WithShiftID(ctx, shiftID.String()), "skipping completion for unresolvable schedule", err)
			return nil
		}
		if window.EndsAt.UTC().After(now) {
			return nil
		}
		finished = true

		updates := map[string]any{
			"status":       enums.ShiftStatusCompleted,
			"completed_at": now,
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return fmt.Errorf("mark shift completed: %w", err)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventShiftCompleted,
			AggregateType: enums.AggregateShift,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ShiftCompletedEvent{
				ShiftID:      current.ID,
				CompletedAt:  now,
				EndsAt:       window.EndsAt.UTC(),
				Participants: current.ParticipantIDs,
			},
		}
		if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return err
		}
		marked = true
		return nil
	})
	return marked, finished, err
}
