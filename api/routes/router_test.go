package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/careswap-app/careswap-backend/pkg/config"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "careswap-tests"}
	cfg.Cron.SharedSecret = "sweep-secret"
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, Deps{})
}

func TestRouterHealthLiveIsPublic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-CareSwap-Env"); got != "test" {
		t.Fatalf("env header missing, got %q", got)
	}
}

func TestRouterShiftsRequireAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterCronRequiresSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cron/shifts", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterAttachesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id header not set")
	}
}
