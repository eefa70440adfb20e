package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
)

type Handler struct {
	Recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{Recorder: recorder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit", middleware.RequireRoles("admin", "analyst"), h.list)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.Recorder.List(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load audit events", nil)
		return
	}
	if events == nil {
		events = []Event{}
	}
	respond.OK(c, events)
}

// ActorFrom builds the audit actor from the authenticated request.
func ActorFrom(c *gin.Context) Actor {
	actor := Actor{IP: c.ClientIP()}
	if claims := middleware.ClaimsFromContext(c); claims != nil {
		actor.UserID = claims.Subject
		actor.OrganizationID = claims.OrganizationID
	}
	return actor
}
