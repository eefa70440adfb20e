package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newChatRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewService(&stubRetriever{}, nil, false, time.Second, 5)).RegisterRoutes(router.Group("/api"))
	return router
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler(t *testing.T) {
	router := newChatRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"ok without profile", `{"message":"How long?"}`, http.StatusOK, ""},
		{"ok with profile", `{"message":"passeport","profile":{"origin_country":"CM","destination_country":"FR","purpose":"study","planned_departure_date":"2026-06-01","duration_months":12,"passport_expiry_date":"2030-01-01","proof_of_funds_level":"low","language":"fr"}}`, http.StatusOK, ""},
		{"empty message", `{"message":"  "}`, http.StatusBadRequest, "invalid_request"},
		{"bad role", `{"message":"hi","history":[{"role":"robot","content":"x"}]}`, http.StatusBadRequest, "invalid_request"},
		{"invalid profile", `{"message":"hi","profile":{"origin_country":"CM"}}`, http.StatusBadRequest, "invalid_profile"},
		{"malformed", `{"message":`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(router, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if tt.wantCode == "" {
				var resp Response
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Answer == "" || len(resp.Sources) == 0 || len(resp.SuggestedQuestions) != 3 {
					t.Fatalf("response = %+v", resp)
				}
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Fatalf("code = %q", body.Error.Code)
			}
		})
	}
}
