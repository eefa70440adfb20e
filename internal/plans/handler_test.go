package plans

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/shared/server/respond"
)

func newPlanRouter(t *testing.T) (*gin.Engine, *MemoryRunRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, runs := newAssembler(&stubRetriever{}, nil, false)
	router := gin.New()
	NewHandler(a).RegisterRoutes(router.Group("/api"))
	return router, runs
}

func postJSON(router *gin.Engine, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPlanHandlerReturnsPlan(t *testing.T) {
	router, runs := newPlanRouter(t)

	rec := postJSON(router, "/api/plan", riskyProfile(t), map[string]string{OrganizationHeader: "org-9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Plan-Mode"); got != "deterministic" {
		t.Fatalf("X-Plan-Mode = %q", got)
	}
	var plan domain.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Risks) != 4 {
		t.Fatalf("risks = %v", riskIDs(plan))
	}
	if list := runs.List(); len(list) != 1 || list[0].OrganizationID != "org-9" {
		t.Fatalf("runs = %+v", list)
	}
}

func TestPlanHandlerRejectsInvalidProfile(t *testing.T) {
	router, runs := newPlanRouter(t)

	tests := []struct {
		name      string
		body      any
		wantCode  string
		wantField string
	}{
		{
			name:      "bad purpose",
			body:      map[string]any{"origin_country": "CM", "destination_country": "FR", "purpose": "PILGRIMAGE", "planned_departure_date": "2026-05-01", "duration_months": 3, "passport_expiry_date": "2030-01-01", "proof_of_funds_level": "LOW", "language": "EN"},
			wantCode:  "invalid_profile",
			wantField: "purpose",
		},
		{
			name:      "missing origin",
			body:      map[string]any{"destination_country": "FR", "purpose": "STUDY", "planned_departure_date": "2026-05-01", "duration_months": 3, "passport_expiry_date": "2030-01-01", "proof_of_funds_level": "LOW", "language": "EN"},
			wantCode:  "invalid_profile",
			wantField: "origin_country",
		},
		{
			name:     "malformed date",
			body:     map[string]any{"planned_departure_date": "May 1st"},
			wantCode: "invalid_request",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(router, "/api/plan", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body struct {
				Error struct {
					Code    string              `json:"code"`
					Details []domain.FieldError `json:"details"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Fatalf("code = %q", body.Error.Code)
			}
			if tt.wantField == "" {
				return
			}
			found := false
			for _, f := range body.Error.Details {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Fatalf("field %q not reported: %+v", tt.wantField, body.Error.Details)
			}
		})
	}
	if len(runs.List()) != 0 {
		t.Fatalf("rejected requests must not record runs")
	}
}

func TestPlanHandlerSchemaFailureIsGeneric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, _ := newAssembler(&stubRetriever{}, fixedClient{text: `{"summary": {}}`}, true)
	router := gin.New()
	NewHandler(a).RegisterRoutes(router.Group("/api"))

	rec := postJSON(router, "/api/plan", comfortableProfile(t), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body respond.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "internal_error" || body.Error.Message != "failed to build plan" {
		t.Fatalf("error = %+v", body.Error)
	}
}

func TestPlanExportHandler(t *testing.T) {
	router, _ := newPlanRouter(t)

	rec := postJSON(router, "/api/plan/export", riskyProfile(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != XLSXContentType {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="visa-plan.xlsx"` {
		t.Fatalf("content disposition = %q", got)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Risks")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("risk rows = %d", len(rows))
	}
}
