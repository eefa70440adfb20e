package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/shared/auth"
)

func newAdminRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	admin := router.Group("/admin/api")
	admin.Use(AdminAuth(issuer, "/admin/api/auth/login"))
	admin.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	admin.GET("/kb", func(c *gin.Context) { c.String(http.StatusOK, UserIDFromContext(c)) })
	admin.POST("/kb/:id/publish", RequireRoles("admin", "reviewer"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func bearer(t *testing.T, issuer *auth.Issuer, roles ...string) string {
	t.Helper()
	token, _, err := issuer.Sign(auth.Identity{UserID: "user-1", Roles: roles})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func TestAdminAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAdminRouter(issuer)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{name: "login is public", method: http.MethodPost, path: "/admin/api/auth/login", want: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: "/admin/api/kb", want: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/admin/api/kb", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "any role lists", method: http.MethodGet, path: "/admin/api/kb", header: bearer(t, issuer, "support"), want: http.StatusOK},
		{name: "editor cannot publish", method: http.MethodPost, path: "/admin/api/kb/1/publish", header: bearer(t, issuer, "editor"), want: http.StatusForbidden},
		{name: "reviewer publishes", method: http.MethodPost, path: "/admin/api/kb/1/publish", header: bearer(t, issuer, "reviewer"), want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}
