package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/admin"
	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/chat"
	"visaverse-backend/internal/kb"
	"visaverse-backend/internal/plans"
	"visaverse-backend/internal/services/health"
	"visaverse-backend/internal/shared/config"
	"visaverse-backend/internal/shared/metrics"
	"visaverse-backend/internal/shared/server/middleware"
	"visaverse-backend/internal/shared/server/respond"
	"visaverse-backend/internal/users"
)

const (
	AdminPrefix = "/admin/api"

	rateGroupPlan = "PLAN"
	rateGroupChat = "CHAT"
)

// RouterDeps carries the handlers mounted on the engine.
type RouterDeps struct {
	Config       config.Config
	Verifier     middleware.TokenVerifier
	PlanHandler  *plans.Handler
	ChatHandler  *chat.Handler
	UserHandler  *users.Handler
	KBHandler    *kb.Handler
	AuditHandler *audit.Handler
	AdminHandler *admin.Handler
	Health       *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.AllowedOrigins),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	limited := api.Group("")
	limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: middleware.GroupByPathPrefix(map[string]string{
			"/api/plan": rateGroupPlan,
			"/api/chat": rateGroupChat,
		}),
		Rules: map[string]middleware.RateLimitRule{
			rateGroupPlan: middleware.PerMinute(deps.Config.PlanRateLimitPerMinute),
			rateGroupChat: middleware.PerMinute(deps.Config.PlanRateLimitPerMinute),
		},
	}))
	if deps.PlanHandler != nil {
		deps.PlanHandler.RegisterRoutes(limited)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(limited)
	}

	adminGroup := r.Group(AdminPrefix)
	adminGroup.Use(middleware.AdminAuth(deps.Verifier, AdminPrefix+users.LoginPath))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(adminGroup)
	}
	if deps.KBHandler != nil {
		deps.KBHandler.RegisterRoutes(adminGroup)
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.RegisterRoutes(adminGroup)
	}
	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterRoutes(adminGroup)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
