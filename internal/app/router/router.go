// Package router builds the gin engine and binds every route to its permission.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/domain/permission"
	authhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/handler"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/middleware"
	opphandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/transport/handler"
	userhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/transport/handler"
	platformhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/handler"
	httpmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/middleware"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Auth          *authhandler.AuthHandler
	Users         *userhandler.UserHandler
	Opportunities *opphandler.OpportunityHandler
	Health        *platformhandler.HealthHandler
}

// Options tunes the engine.
type Options struct {
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the engine with every route bound to its permission.
func NewRouter(guard middleware.Authorizer, h Handlers, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}

	r := gin.New()
	r.Use(httpmw.RequestID(), httpmw.AccessLog(logger), httpmw.Metrics())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		respond.Message(c, 404, "Not found")
	})

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// require は操作ごとのガードを返す
	require := func(op permission.Operation) gin.HandlerFunc {
		return middleware.Require(guard, op)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", require(permission.OpLogout), h.Auth.Logout)
		auth.GET("/me", require(permission.OpMe), h.Auth.Me)
	}

	users := r.Group("/users")
	{
		users.GET("", require(permission.OpListUsers), h.Users.List)
		users.GET("/count-by-role", require(permission.OpCountUsersByRole), h.Users.CountByRole)
		users.GET("/:id", require(permission.OpGetUser), h.Users.Get)
		users.DELETE("/:id", require(permission.OpDeleteUser), h.Users.Delete)
	}

	opp := h.Opportunities
	opportunities := r.Group("/opportunities")
	{
		opportunities.GET("", require(permission.OpListOpportunities), opp.List)
		opportunities.GET("/count", require(permission.OpCountOpportunities), opp.Count)
		opportunities.GET("/counts", require(permission.OpCountOpportunities), opp.Count)
		opportunities.GET("/:id", require(permission.OpGetOpportunity), opp.Get)
		opportunities.POST("", require(permission.OpCreateOpportunity), opp.Create)
		opportunities.PATCH("/:id/status", require(permission.OpSetStatus), opp.SetStatus)
	}

	organizers := r.Group("/organizers/:organizerId")
	{
		organizers.GET("/opportunities", require(permission.OpOrganizerOpportunities), opp.OrganizerOpportunities)
		organizers.GET("/dashboard-stats", require(permission.OpOrganizerDashboard), opp.OrganizerDashboard)
	}

	players := r.Group("/players/:playerId")
	{
		players.GET("/opportunities", require(permission.OpPlayerRegistered), opp.PlayerRegistered)
		players.GET("/joined-opportunities", require(permission.OpPlayerJoined), opp.PlayerJoined)
		players.POST("/opportunities/:opportunityId/register", require(permission.OpPlayerRegister), opp.Register)
		players.POST("/opportunities/:opportunityId/join", require(permission.OpPlayerJoin), opp.Join)
		players.GET("/dashboard-stats", require(permission.OpPlayerDashboard), opp.PlayerDashboard)
	}

	return r
}

// corsConfig allows every origin when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
