package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/shared/auth"
	"visaverse-backend/internal/shared/server/middleware"
)

func TestLoginThenCreateUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("secret", time.Hour)
	svc := NewService(NewMemoryRepo(), issuer, audit.NewRecorder(audit.NewMemoryRepo()))
	svc.Cost = bcrypt.MinCost

	router := gin.New()
	admin := router.Group("/admin/api")
	admin.Use(middleware.AdminAuth(issuer, "/admin/api"+LoginPath))
	NewHandler(svc).RegisterRoutes(admin)

	body, _ := json.Marshal(loginRequest{Email: "root@example.com", Password: "password123"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin/api/auth/login", bytes.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var login LoginResult
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	create := func(token string) int {
		payload, _ := json.Marshal(CreateInput{Email: "editor@example.com", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/admin/api/users", bytes.NewReader(payload))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := create(""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := create(login.AccessToken); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code := create(login.AccessToken); code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", code)
	}

	editorToken, _, _ := issuer.Sign(auth.Identity{UserID: "e1", Roles: []string{RoleEditor}})
	if code := create(editorToken); code != http.StatusForbidden {
		t.Fatalf("expected 403 for editor, got %d", code)
	}
}
