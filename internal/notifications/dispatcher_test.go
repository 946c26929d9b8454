package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/logger"
	"github.com/careswap-app/careswap-backend/pkg/push"
)

type stubNotificationsRepo struct {
	inserted  bool
	upsertErr error
	stored    *models.Notification
}

func (s *stubNotificationsRepo) Upsert(ctx context.Context, notification *models.Notification) (bool, error) {
	if s.upsertErr != nil {
		return false, s.upsertErr
	}
	s.stored = notification
	return s.inserted, nil
}

func (s *stubNotificationsRepo) List(ctx context.Context, userID uuid.UUID, filters ListFilters) (*NotificationList, error) {
	return nil, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (int64, error) {
	return 0, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return 0, nil
}

type stubTokenSource struct {
	tokens map[uuid.UUID][]string
	err    error
}

func (s *stubTokenSource) TokensForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tokens, nil
}

type stubSender struct {
	sent []push.MulticastMessage
	err  error
}

func (s *stubSender) SendMulticast(ctx context.Context, msg push.MulticastMessage) (push.MulticastResult, error) {
	if s.err != nil {
		return push.MulticastResult{}, s.err
	}
	s.sent = append(s.sent, msg)
	return push.MulticastResult{SuccessCount: len(msg.Tokens)}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "notifications-test"})
}

func testDelivery(recipientID uuid.UUID) Delivery {
	return Delivery{
		RecipientID: recipientID,
		Type:        enums.NotificationTypeShiftReminder,
		SubjectID:   uuid.New(),
		Title:       "Shift starts soon",
		Message:     "Your shift starts at 18:00.",
	}
}

func TestDispatchStoresRecordAndPushes(t *testing.T) {
	recipientID := uuid.New()
	repo := &stubNotificationsRepo{inserted: true}
	tokens := &stubTokenSource{tokens: map[uuid.UUID][]string{recipientID: {"tok-1", "tok-2"}}}
	sender := &stubSender{}
	dispatcher, err := NewDispatcher(repo, tokens, sender, testLogger())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	if err := dispatcher.Dispatch(context.Background(), testDelivery(recipientID)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if repo.stored == nil || repo.stored.UserID != recipientID {
		t.Fatalf("durable record missing: %+v", repo.stored)
	}
	if len(sender.sent) != 1 || len(sender.sent[0].Tokens) != 2 {
		t.Fatalf("expected one multicast to two tokens, got %+v", sender.sent)
	}
}

func TestDispatchSkipsPushWhenRecordExists(t *testing.T) {
	recipientID := uuid.New()
	repo := &stubNotificationsRepo{inserted: false}
	tokens := &stubTokenSource{tokens: map[uuid.UUID][]string{recipientID: {"tok-1"}}}
	sender := &stubSender{}
	dispatcher, _ := NewDispatcher(repo, tokens, sender, testLogger())

	if err := dispatcher.Dispatch(context.Background(), testDelivery(recipientID)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("duplicate record must not re-push")
	}
}

func TestDispatchPushFailureNeverSurfaces(t *testing.T) {
	recipientID := uuid.New()
	repo := &stubNotificationsRepo{inserted: true}
	tokens := &stubTokenSource{tokens: map[uuid.UUID][]string{recipientID: {"tok-1"}}}
	sender := &stubSender{err: errors.New("gateway down")}
	dispatcher, _ := NewDispatcher(repo, tokens, sender, testLogger())

	if err := dispatcher.Dispatch(context.Background(), testDelivery(recipientID)); err != nil {
		t.Fatalf("push failure must not fail the dispatch: %v", err)
	}
}

func TestDispatchNoTokensNoPush(t *testing.T) {
	recipientID := uuid.New()
	repo := &stubNotificationsRepo{inserted: true}
	sender := &stubSender{}
	dispatcher, _ := NewDispatcher(repo, &stubTokenSource{}, sender, testLogger())

	if err := dispatcher.Dispatch(context.Background(), testDelivery(recipientID)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no tokens means no multicast")
	}
}

func TestDispatchUpsertFailureSurfaces(t *testing.T) {
	repo := &stubNotificationsRepo{upsertErr: errors.New("db down")}
	dispatcher, _ := NewDispatcher(repo, &stubTokenSource{}, &stubSender{}, testLogger())

	if err := dispatcher.Dispatch(context.Background(), testDelivery(uuid.New())); err == nil {
		t.Fatalf("durable write failure must surface")
	}
}
