package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tealeg/xlsx/v2"

	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/export"
	"github.com/octobees/catering-leads/internal/maps"
	"github.com/octobees/catering-leads/internal/service"
)

type stubLeadGenerator struct {
	generateIn  service.GenerateInput
	generateOut service.GenerateOutput
	enrichIn    []*entity.Lead
	limit       int
	err         error
}

func (s *stubLeadGenerator) Generate(_ context.Context, in service.GenerateInput) (service.GenerateOutput, error) {
	s.generateIn = in
	return s.generateOut, s.err
}

func (s *stubLeadGenerator) Enrich(_ context.Context, leads []*entity.Lead, _ service.ProgressFunc) ([]*entity.Lead, error) {
	s.enrichIn = leads
	if s.err != nil {
		return leads, s.err
	}
	for i, lead := range leads {
		if i >= s.limit {
			break
		}
		lead.URLValid = entity.ValidityValid
	}
	return leads, nil
}

func (s *stubLeadGenerator) EnrichLimit() int {
	return s.limit
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func postJSON(e *echo.Echo, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestGenerateAppliesDefaultsAndScores(t *testing.T) {
	site := "https://goodfood.com"
	stub := &stubLeadGenerator{
		limit: 20,
		generateOut: service.GenerateOutput{
			DiscoveryResult: service.DiscoveryResult{
				RunID: "run-1",
				Leads: []*entity.Lead{{Company: "Good Food", URL: &site, Country: entity.DefaultCountry}},
				Location: entity.ResolvedLocation{
					Coordinate:       entity.Coordinate{Latitude: 39.8, Longitude: -89.6},
					FormattedAddress: "1 Main St, Springfield, IL",
				},
				TermsUsed: []string{"catering"},
			},
		},
	}
	h := NewLeadsHandler(stub)

	rec := postJSON(newTestEcho(), h.Generate, `{"school_address":"  1 Main St  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	in := stub.generateIn
	if in.SchoolAddress != "1 Main St" || in.RadiusMiles != 15 || in.Category != service.CategoryCatering || in.Enrich {
		t.Fatalf("unexpected service input: %+v", in)
	}

	env := decodeEnvelope(t, rec)
	var data struct {
		Leads []struct {
			Company string `json:"company"`
			Score   struct {
				Total int `json:"total"`
			} `json:"score"`
		} `json:"leads"`
		TotalCount      int      `json:"total_count"`
		SearchTermsUsed []string `json:"search_terms_used"`
		SchoolLocation  struct {
			Lat float64 `json:"lat"`
		} `json:"school_location"`
		Enriched bool `json:"enriched"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.TotalCount != 1 || len(data.Leads) != 1 || data.Leads[0].Company != "Good Food" {
		t.Fatalf("unexpected leads: %+v", data)
	}
	if data.Leads[0].Score.Total <= 0 {
		t.Fatalf("expected a positive score, got %d", data.Leads[0].Score.Total)
	}
	if data.SchoolLocation.Lat != 39.8 || len(data.SearchTermsUsed) != 1 || data.Enriched {
		t.Fatalf("unexpected response data: %+v", data)
	}
}

func TestGeneratePassesCustomTerms(t *testing.T) {
	stub := &stubLeadGenerator{limit: 20}
	h := NewLeadsHandler(stub)

	body := `{"school_address":"1 Main St","radius_miles":5,"search_type":"custom","custom_search_terms":["tacos"],"enrich_leads":true}`
	rec := postJSON(newTestEcho(), h.Generate, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	in := stub.generateIn
	if in.Category != service.CategoryCustom || in.RadiusMiles != 5 || !in.Enrich {
		t.Fatalf("unexpected service input: %+v", in)
	}
	if len(in.CustomTerms) != 1 || in.CustomTerms[0] != "tacos" {
		t.Fatalf("unexpected custom terms: %v", in.CustomTerms)
	}
}

func TestGenerateValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing address", `{"radius_miles":10}`, "school_address"},
		{"radius too large", `{"school_address":"x","radius_miles":51}`, "radius_miles"},
		{"radius too small", `{"school_address":"x","radius_miles":0.5}`, "radius_miles"},
		{"unknown search type", `{"school_address":"x","search_type":"sushi"}`, "search_type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubLeadGenerator{}
			rec := postJSON(newTestEcho(), NewLeadsHandler(stub).Generate, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if _, ok := env.Details[tc.field]; !ok {
				t.Fatalf("expected details for %s, got %v", tc.field, env.Details)
			}
			if stub.generateIn.SchoolAddress != "" {
				t.Fatalf("service should not be called")
			}
		})
	}

	rec := postJSON(newTestEcho(), NewLeadsHandler(&stubLeadGenerator{}).Generate, `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unresolvable", fmt.Errorf("%w: %w", service.ErrAddressNotResolvable, maps.ErrAddressNotFound), http.StatusBadRequest, "Could not geocode school address"},
		{"configuration", fmt.Errorf("%w: %w", service.ErrConfiguration, maps.ErrMissingAPIKey), http.StatusServiceUnavailable, "lead discovery is not configured"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "failed to generate leads"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewLeadsHandler(&stubLeadGenerator{err: tc.err})
			rec := postJSON(newTestEcho(), h.Generate, `{"school_address":"1 Main St"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Status != "error" || env.Message != tc.message {
				t.Fatalf("unexpected response: %+v", env)
			}
		})
	}
}

func TestEnrichBoundedByLimit(t *testing.T) {
	stub := &stubLeadGenerator{limit: 1}
	h := NewLeadsHandler(stub)

	body := `{"leads":[{"company":"A","url":"a.com","url_valid":null},{"company":"B","url":"b.com","score":{"total":3}}]}`
	rec := postJSON(newTestEcho(), h.Enrich, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stub.enrichIn) != 2 {
		t.Fatalf("expected the full list to reach the service, got %d", len(stub.enrichIn))
	}

	env := decodeEnvelope(t, rec)
	var data struct {
		Leads []struct {
			Company  string `json:"company"`
			URLValid *bool  `json:"url_valid"`
		} `json:"leads"`
		TotalCount    int `json:"total_count"`
		EnrichedCount int `json:"enriched_count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.TotalCount != 2 || data.EnrichedCount != 1 {
		t.Fatalf("unexpected counts: %+v", data)
	}
	if data.Leads[0].URLValid == nil || !*data.Leads[0].URLValid || data.Leads[1].URLValid != nil {
		t.Fatalf("unexpected url_valid values: %+v", data.Leads)
	}
}

func TestGenerateReturnsLeadsWhenEnrichmentInterrupted(t *testing.T) {
	stub := &stubLeadGenerator{
		limit: 20,
		err:   context.DeadlineExceeded,
		generateOut: service.GenerateOutput{
			DiscoveryResult: service.DiscoveryResult{
				Leads: []*entity.Lead{{Company: "A", URLValid: entity.ValidityValid}, {Company: "B"}},
			},
			Interrupted: true,
		},
	}

	rec := postJSON(newTestEcho(), NewLeadsHandler(stub).Generate, `{"school_address":"1 Main St","enrich_leads":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Message != interruptedMessage {
		t.Fatalf("unexpected message %q", env.Message)
	}
	var data struct {
		TotalCount  int  `json:"total_count"`
		Enriched    bool `json:"enriched"`
		Interrupted bool `json:"enrichment_interrupted"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.TotalCount != 2 || data.Enriched || !data.Interrupted {
		t.Fatalf("unexpected response data: %+v", data)
	}
}

func TestEnrichReturnsLeadsWhenInterrupted(t *testing.T) {
	stub := &stubLeadGenerator{limit: 5, err: context.Canceled}

	rec := postJSON(newTestEcho(), NewLeadsHandler(stub).Enrich, `{"leads":[{"company":"A"},{"company":"B"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var data struct {
		TotalCount    int  `json:"total_count"`
		EnrichedCount int  `json:"enriched_count"`
		Interrupted   bool `json:"enrichment_interrupted"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.TotalCount != 2 || data.EnrichedCount != 0 || !data.Interrupted {
		t.Fatalf("unexpected response data: %+v", data)
	}
}

func TestEnrichRejectsEmptyList(t *testing.T) {
	rec := postJSON(newTestEcho(), NewLeadsHandler(&stubLeadGenerator{limit: 5}).Enrich, `{"leads":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportReturnsWorkbook(t *testing.T) {
	h := NewLeadsHandler(&stubLeadGenerator{})
	h.now = func() time.Time { return time.Date(2024, 9, 3, 23, 30, 0, 0, time.UTC) }

	rec := postJSON(newTestEcho(), h.Export, `{"school_name":"Lincoln High","leads":[{"company":"Good Food","city":"Springfield"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := `attachment; filename="leads_Lincoln_High_2024-09-03.xlsx"`
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != want {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	f, err := xlsx.OpenBinary(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	sheet, ok := f.Sheet[export.SheetName]
	if !ok {
		t.Fatalf("missing %s sheet", export.SheetName)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(sheet.Rows))
	}
	if got := sheet.Rows[1].Cells[0].String(); got != "Good Food" {
		t.Fatalf("unexpected company cell %q", got)
	}
}
