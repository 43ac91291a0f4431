package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/catering-leads/internal/config"
	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/handler"
	"github.com/octobees/catering-leads/internal/service"
)

type fakeLeads struct {
	calls int
}

func (f *fakeLeads) Generate(context.Context, service.GenerateInput) (service.GenerateOutput, error) {
	f.calls++
	return service.GenerateOutput{}, nil
}

func (f *fakeLeads) Enrich(_ context.Context, leads []*entity.Lead, _ service.ProgressFunc) ([]*entity.Lead, error) {
	return leads, nil
}

func (f *fakeLeads) EnrichLimit() int { return 20 }

func newServer(t *testing.T, requests int) (*echo.Echo, *fakeLeads) {
	t.Helper()
	leads := &fakeLeads{}
	e := echo.New()
	cfg := &config.Config{RateLimitGenerate: config.RateLimitConfig{Requests: requests, Interval: time.Hour}}
	Register(e, cfg, Handlers{Leads: handler.NewLeadsHandler(leads)})
	return e, leads
}

func TestHealthz(t *testing.T) {
	e, _ := newServer(t, 1)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGenerateIsRateLimited(t *testing.T) {
	e, leads := newServer(t, 1)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(`{"school_address":"1 Main St"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes: %v", codes)
	}
	if leads.calls != 1 {
		t.Fatalf("expected one service call, got %d", leads.calls)
	}
}

func TestEnrichIsNotRateLimited(t *testing.T) {
	e, _ := newServer(t, 1)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/leads/enrich", strings.NewReader(`{"leads":[{"company":"A"}]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}
