package kb

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/kb")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", middleware.RequireRoles("admin", "editor"), h.create)
	g.PUT("/:id", middleware.RequireRoles("admin", "editor"), h.update)
	g.POST("/:id/submit", middleware.RequireRoles("admin", "editor"), h.submit)
	g.POST("/:id/publish", middleware.RequireRoles("admin", "reviewer"), h.publish)
	g.DELETE("/:id", middleware.RequireRoles("admin"), h.archive)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	respond.OK(c, docs)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	doc, err := h.Svc.Create(c.Request.Context(), audit.ActorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	doc, err := h.Svc.Update(c.Request.Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) submit(c *gin.Context) {
	doc, err := h.Svc.Submit(c.Request.Context(), audit.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) publish(c *gin.Context) {
	doc, err := h.Svc.Publish(c.Request.Context(), audit.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) archive(c *gin.Context) {
	doc, err := h.Svc.Archive(c.Request.Context(), audit.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "knowledge base request failed", nil)
	}
}
