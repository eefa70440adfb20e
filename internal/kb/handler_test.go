package kb

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/shared/auth"
	"visaverse-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("secret", time.Hour)
	svc := NewService(NewMemoryRepo(), audit.NewRecorder(audit.NewMemoryRepo()))
	router := gin.New()
	admin := router.Group("/admin/api")
	admin.Use(middleware.AdminAuth(issuer))
	NewHandler(svc).RegisterRoutes(admin)
	return router, issuer
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerWorkflowAndRoles(t *testing.T) {
	router, issuer := newTestRouter(t)
	sign := func(roles ...string) string {
		token, _, err := issuer.Sign(auth.Identity{UserID: "u-" + roles[0], Roles: roles})
		require.NoError(t, err)
		return token
	}
	editor, reviewer, support := sign("editor"), sign("reviewer"), sign("support")

	rec := doJSON(router, http.MethodPost, "/admin/api/kb", support, CreateInput{Title: "T", Content: "C"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/admin/api/kb", editor, CreateInput{Title: "T", Content: "C"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var doc Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	rec = doJSON(router, http.MethodPost, "/admin/api/kb/"+doc.ID+"/publish", reviewer, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_transition")

	rec = doJSON(router, http.MethodPost, "/admin/api/kb/"+doc.ID+"/submit", editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/admin/api/kb/"+doc.ID+"/publish", editor, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/admin/api/kb/"+doc.ID+"/publish", reviewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, StatusPublished, doc.Status)

	rec = doJSON(router, http.MethodGet, "/admin/api/kb", support, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)

	rec = doJSON(router, http.MethodDelete, "/admin/api/kb/"+doc.ID, editor, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodGet, "/admin/api/kb/missing", support, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/admin/api/kb", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
