package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/api/middleware"
	"github.com/careswap-app/careswap-backend/internal/shifts"
	"github.com/careswap-app/careswap-backend/pkg/db/models"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

type testShiftService struct {
	proposeFn     func(ctx context.Context, input shifts.ProposeInput) (*models.Shift, error)
	decideFn      func(ctx context.Context, input shifts.DecideInput) (*models.Shift, error)
	proposeSwapFn func(ctx context.Context, input shifts.SwapInput) (*models.Shift, error)
	respondSwapFn func(ctx context.Context, input shifts.SwapResponseInput) (*models.Shift, error)
	cancelFn      func(ctx context.Context, input shifts.CancelInput) (*shifts.CancelResult, error)
	getFn         func(ctx context.Context, shiftID, actorUserID uuid.UUID) (*models.Shift, error)
	listFn        func(ctx context.Context, userID uuid.UUID, filters shifts.ListFilters) (*shifts.ShiftList, error)
}

func (s *testShiftService) Propose(ctx context.Context, input shifts.ProposeInput) (*models.Shift, error) {
	if s.proposeFn != nil {
		return s.proposeFn(ctx, input)
	}
	return &models.Shift{}, nil
}

func (s *testShiftService) Decide(ctx context.Context, input shifts.DecideInput) (*models.Shift, error) {
	if s.decideFn != nil {
		return s.decideFn(ctx, input)
	}
	return &models.Shift{}, nil
}

func (s *testShiftService) ProposeSwap(ctx context.Context, input shifts.SwapInput) (*models.Shift, error) {
	if s.proposeSwapFn != nil {
		return s.proposeSwapFn(ctx, input)
	}
	return &models.Shift{}, nil
}

func (s *testShiftService) RespondSwap(ctx context.Context, input shifts.SwapResponseInput) (*models.Shift, error) {
	if s.respondSwapFn != nil {
		return s.respondSwapFn(ctx, input)
	}
	return &models.Shift{}, nil
}

func (s *testShiftService) Cancel(ctx context.Context, input shifts.CancelInput) (*shifts.CancelResult, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, input)
	}
	return &shifts.CancelResult{}, nil
}

func (s *testShiftService) Get(ctx context.Context, shiftID, actorUserID uuid.UUID) (*models.Shift, error) {
	if s.getFn != nil {
		return s.getFn(ctx, shiftID, actorUserID)
	}
	return &models.Shift{}, nil
}

func (s *testShiftService) ListForUser(ctx context.Context, userID uuid.UUID, filters shifts.ListFilters) (*shifts.ShiftList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID, filters)
	}
	return &shifts.ShiftList{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, body any, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	return req
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestProposeShiftSuccess(t *testing.T) {
	actor := uuid.New()
	accepter := uuid.New()
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(4 * time.Hour)

	var got shifts.ProposeInput
	svc := &testShiftService{
		proposeFn: func(ctx context.Context, input shifts.ProposeInput) (*models.Shift, error) {
			got = input
			return &models.Shift{ID: uuid.New()}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shifts", map[string]any{
		"accepterUid": accepter,
		"startsAt":    start,
		"endsAt":      end,
		"timezone":    "America/New_York",
	}, actor)
	resp := httptest.NewRecorder()
	ProposeShift(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.ProposerID != actor || got.RecipientID != accepter {
		t.Fatalf("participants not forwarded: %+v", got)
	}
	if !got.StartsAt.Equal(start) || !got.EndsAt.Equal(end) {
		t.Fatalf("window not forwarded: %+v", got)
	}
}

func TestProposeShiftResolvesLegacyBody(t *testing.T) {
	actor := uuid.New()
	var got shifts.ProposeInput
	svc := &testShiftService{
		proposeFn: func(ctx context.Context, input shifts.ProposeInput) (*models.Shift, error) {
			got = input
			return &models.Shift{}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shifts", map[string]any{
		"accepterUid": uuid.New(),
		"date":        "2026-10-01",
		"startTime":   "18:00",
		"endTime":     "22:00",
		"timezone":    "UTC",
	}, actor)
	resp := httptest.NewRecorder()
	ProposeShift(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	want := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)
	if !got.StartsAt.Equal(want) {
		t.Fatalf("legacy start resolved to %v", got.StartsAt)
	}
	if !got.EndsAt.Equal(want.Add(4 * time.Hour)) {
		t.Fatalf("legacy end resolved to %v", got.EndsAt)
	}
}

func TestProposeShiftRequiresWindow(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/shifts", map[string]any{
		"accepterUid": uuid.New(),
	}, uuid.New())
	resp := httptest.NewRecorder()
	ProposeShift(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProposeShiftMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()
	ProposeShift(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAcceptShiftForwardsDecision(t *testing.T) {
	actor := uuid.New()
	shiftID := uuid.New()
	var got shifts.DecideInput
	svc := &testShiftService{
		decideFn: func(ctx context.Context, input shifts.DecideInput) (*models.Shift, error) {
			got = input
			return &models.Shift{ID: shiftID}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shifts/"+shiftID.String()+"/accept", nil, actor)
	req = addRouteParam(req, "shiftId", shiftID.String())
	resp := httptest.NewRecorder()
	AcceptShift(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !got.Accept || got.ShiftID != shiftID || got.ActorUserID != actor {
		t.Fatalf("decision not forwarded: %+v", got)
	}
}

func TestRejectShiftStateConflictMapsTo422(t *testing.T) {
	shiftID := uuid.New()
	svc := &testShiftService{
		decideFn: func(ctx context.Context, input shifts.DecideInput) (*models.Shift, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shift is no longer proposed")
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shifts/"+shiftID.String()+"/reject", nil, uuid.New())
	req = addRouteParam(req, "shiftId", shiftID.String())
	resp := httptest.NewRecorder()
	RejectShift(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestRespondShiftSwapRequiresAccept(t *testing.T) {
	shiftID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/shifts/"+shiftID.String()+"/swap/respond", map[string]any{}, uuid.New())
	req = addRouteParam(req, "shiftId", shiftID.String())
	resp := httptest.NewRecorder()
	RespondShiftSwap(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCancelShiftResponseShape(t *testing.T) {
	actor := uuid.New()
	shiftID := uuid.New()
	other := uuid.New()
	svc := &testShiftService{
		cancelFn: func(ctx context.Context, input shifts.CancelInput) (*shifts.CancelResult, error) {
			return &shifts.CancelResult{ShiftID: shiftID, OtherUserID: other, CutoffHours: 4}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/shifts/"+shiftID.String()+"/cancel", map[string]any{
		"reasonCode": "illness",
	}, actor)
	req = addRouteParam(req, "shiftId", shiftID.String())
	resp := httptest.NewRecorder()
	CancelShift(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["ok"] != true {
		t.Fatalf("response missing ok flag")
	}
	if envelope.Data["otherUserUid"] != other.String() {
		t.Fatalf("response missing counterpart: %+v", envelope.Data)
	}
	if envelope.Data["cutoffHours"] != float64(4) {
		t.Fatalf("response missing cutoff: %+v", envelope.Data)
	}
}

func TestCancelShiftRejectsUnknownReason(t *testing.T) {
	shiftID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/shifts/"+shiftID.String()+"/cancel", map[string]any{
		"reasonCode": "bored",
	}, uuid.New())
	req = addRouteParam(req, "shiftId", shiftID.String())
	resp := httptest.NewRecorder()
	CancelShift(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetShiftInvalidID(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/shifts/not-a-uuid", nil, uuid.New())
	req = addRouteParam(req, "shiftId", "not-a-uuid")
	resp := httptest.NewRecorder()
	GetShift(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListShiftsParsesFilters(t *testing.T) {
	actor := uuid.New()
	var gotFilters shifts.ListFilters
	svc := &testShiftService{
		listFn: func(ctx context.Context, userID uuid.UUID, filters shifts.ListFilters) (*shifts.ShiftList, error) {
			gotFilters = filters
			return &shifts.ShiftList{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/shifts?status=accepted&limit=5&cursor=abc", nil, actor)
	resp := httptest.NewRecorder()
	ListShifts(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotFilters.Status == nil || string(*gotFilters.Status) != "accepted" {
		t.Fatalf("status filter not parsed: %+v", gotFilters)
	}
	if gotFilters.Limit != 5 || gotFilters.Cursor != "abc" {
		t.Fatalf("pagination not parsed: %+v", gotFilters)
	}
}

func TestListShiftsRejectsBadStatus(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/shifts?status=parked", nil, uuid.New())
	resp := httptest.NewRecorder()
	ListShifts(&testShiftService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
