package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/kb"
	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
	"visaverse-backend/internal/shared/telemetry"
)

// FileReloader rereads the file knowledge base.
type FileReloader interface {
	Reload()
	Passages(ctx context.Context) ([]kb.Passage, error)
}

type Handler struct {
	Svc   *Service
	Files FileReloader
}

func NewHandler(svc *Service, files FileReloader) *Handler {
	return &Handler{Svc: svc, Files: files}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics", middleware.RequireRoles("admin", "analyst"), h.metrics)
	if h.Files != nil {
		rg.POST("/kb-files/reload", middleware.RequireRoles("admin"), h.reloadFiles)
	}
}

type reloadResponse struct {
	Passages int `json:"passages"`
}

func (h *Handler) reloadFiles(c *gin.Context) {
	h.Files.Reload()
	passages, err := h.Files.Passages(c.Request.Context())
	if err != nil {
		telemetry.Error("admin.kb_files.reload_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reload knowledge base files", nil)
		return
	}
	telemetry.Info("admin.kb_files.reloaded", map[string]any{"passages": len(passages)})
	respond.OK(c, reloadResponse{Passages: len(passages)})
}

func (h *Handler) metrics(c *gin.Context) {
	summary, err := h.Svc.Summary(c.Request.Context())
	if err != nil {
		telemetry.Error("admin.metrics.failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load metrics", nil)
		return
	}
	respond.OK(c, summary)
}
