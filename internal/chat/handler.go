package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/plans"
	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
	"visaverse-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.chat)
}

func (h *Handler) chat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", ErrEmptyMessage.Error(), nil)
		return
	}
	for i, m := range req.History {
		if m.Role == "" {
			req.History[i].Role = "user"
			continue
		}
		if !validRoles[m.Role] {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "history role must be one of user, assistant, system", nil)
			return
		}
	}
	if req.Profile != nil {
		profile, err := domain.NewProfile(*req.Profile)
		if err != nil {
			plans.WriteProfileError(c, err)
			return
		}
		req.Profile = &profile
	}

	resp, err := h.Svc.Answer(c.Request.Context(), req)
	if err != nil {
		telemetry.Error("chat.answer.failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer", nil)
		return
	}
	c.Set(middleware.PlanModeKey, string(resp.Mode))
	respond.OK(c, resp)
}
