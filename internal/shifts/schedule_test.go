package shifts

import (
	"testing"
	"time"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveWindowPrefersAbsoluteInstants(t *testing.T) {
	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	shift := &models.Shift{
		StartsAt: timePtr(start),
		EndsAt:   timePtr(end),
		// Stale legacy fields must lose to the canonical instants.
		LegacyDate:  strPtr("2020-01-01"),
		LegacyStart: strPtr("09:00"),
		LegacyEnd:   strPtr("10:00"),
		Timezone:    "UTC",
	}

	window, err := ResolveWindow(shift)
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if !window.StartsAt.Equal(start) || !window.EndsAt.Equal(end) {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestResolveWindowFallsBackToLegacyFields(t *testing.T) {
	shift := &models.Shift{
		LegacyDate:  strPtr("2026-09-12"),
		LegacyStart: strPtr("18:00"),
		LegacyEnd:   strPtr("22:00"),
		Timezone:    "America/New_York",
	}

	window, err := ResolveWindow(shift)
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}

	loc, _ := time.LoadLocation("America/New_York")
	wantStart := time.Date(2026, 9, 12, 18, 0, 0, 0, loc)
	if !window.StartsAt.Equal(wantStart) {
		t.Fatalf("start mismatch: got %v want %v", window.StartsAt, wantStart)
	}
	if got := window.EndsAt.Sub(window.StartsAt); got != 4*time.Hour {
		t.Fatalf("unexpected duration %v", got)
	}
}

func TestResolveWindowHandlesOvernightShift(t *testing.T) {
	shift := &models.Shift{
		LegacyDate:  strPtr("2026-09-12"),
		LegacyStart: strPtr("22:00"),
		LegacyEnd:   strPtr("06:00"),
		Timezone:    "UTC",
	}

	window, err := ResolveWindow(shift)
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if got := window.EndsAt.Sub(window.StartsAt); got != 8*time.Hour {
		t.Fatalf("unexpected overnight duration %v", got)
	}
}

func TestResolveWindowUnresolvableIsValidationError(t *testing.T) {
	cases := []*models.Shift{
		{Timezone: "UTC"},
		{LegacyDate: strPtr("2026-09-12"), Timezone: "UTC"},
		{LegacyDate: strPtr("not-a-date"), LegacyStart: strPtr("18:00"), LegacyEnd: strPtr("19:00"), Timezone: "UTC"},
		{LegacyDate: strPtr("2026-09-12"), LegacyStart: strPtr("18:00"), LegacyEnd: strPtr("19:00"), Timezone: "Mars/Olympus"},
	}
	for i, shift := range cases {
		_, err := ResolveWindow(shift)
		if err == nil {
			t.Errorf("case %d: expected error", i)
			continue
		}
		if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestResolveStartToleratesMissingEnd(t *testing.T) {
	shift := &models.Shift{
		LegacyDate:  strPtr("2026-09-12"),
		LegacyStart: strPtr("18:00"),
		Timezone:    "UTC",
	}

	start, err := ResolveStart(shift)
	if err != nil {
		t.Fatalf("ResolveStart: %v", err)
	}
	want := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("start mismatch: got %v want %v", start, want)
	}
}
