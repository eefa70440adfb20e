package plans

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
	"visaverse-backend/internal/shared/telemetry"
)

// OrganizationHeader optionally tags a plan run with an organization.
const OrganizationHeader = "X-Organization-ID"

type Handler struct {
	Assembler *Assembler
}

func NewHandler(a *Assembler) *Handler {
	return &Handler{Assembler: a}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plan", h.plan)
	rg.POST("/plan/export", h.export)
}

func (h *Handler) plan(c *gin.Context) {
	out, ok := h.build(c)
	if !ok {
		return
	}
	respond.OK(c, out.Plan)
}

func (h *Handler) export(c *gin.Context) {
	out, ok := h.build(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, out.Plan); err != nil {
		telemetry.Error("plan.export.failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export plan", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="visa-plan.xlsx"`)
	c.Data(http.StatusOK, XLSXContentType, buf.Bytes())
}

func (h *Handler) build(c *gin.Context) (Outcome, bool) {
	var req domain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return Outcome{}, false
	}
	profile, err := domain.NewProfile(req)
	if err != nil {
		WriteProfileError(c, err)
		return Outcome{}, false
	}

	out, err := h.Assembler.Build(c.Request.Context(), profile, strings.TrimSpace(c.GetHeader(OrganizationHeader)))
	if err != nil {
		// Schema failures and other internal errors share a generic message.
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build plan", nil)
		return Outcome{}, false
	}
	c.Set(middleware.PlanModeKey, string(out.Mode))
	c.Header("X-Plan-Mode", string(out.Mode))
	return out, true
}

// WriteProfileError renders a rejected profile as 400 with per-field details.
func WriteProfileError(c *gin.Context, err error) {
	var perr *domain.ProfileError
	if errors.As(err, &perr) {
		respond.Error(c, http.StatusBadRequest, "invalid_profile", "profile validation failed", perr.Fields)
		return
	}
	respond.Error(c, http.StatusBadRequest, "invalid_profile", err.Error(), nil)
}
