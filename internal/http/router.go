package api

import (
	stdhttp "net/http"

	intconfig "bustiming/internal/config"
	"bustiming/internal/domain/models"
	h "bustiming/internal/http/handlers"
	"bustiming/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, a *h.API, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil && log != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"error":   "route not found",
			"code":    "not_found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	loginLimiter := middleware.NewIPRateLimiter(env.LoginRatePerMinute)
	requireAdmin := middleware.RequireAdmin(a.Auth(), h.RespondDomainError)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", a.Health)
		api.GET("/db-check", a.DBCheck)
		api.GET("/endpoints", a.Endpoints)

		// Traveler lookups
		routes := api.Group("/routes")
		routes.GET("", a.ListRoutes)
		routes.GET("/popular", a.PopularRoutes)
		routes.GET("/search/:query", a.SearchRoutes)
		routes.GET("/:route", a.RouteDepartures)
		// legacy paths
		buses := api.Group("/buses")
		buses.GET("/routes", a.ListRoutes)
		buses.GET("/route/:route", a.RouteDepartures)

		// Admin auth
		admin := api.Group("/admin")
		admin.POST("/login", loginLimiter.Middleware(), a.Login)
		admin.POST("/setup", a.Setup)
		admin.GET("/profile", requireAdmin, a.Profile)

		// Timetable administration
		secured := admin.Group("", requireAdmin, adminOnly)
		secured.POST("/seed", a.SeedEntries)
		mountEntries(secured.Group("/entries"), a)
		// legacy path
		mountEntries(secured.Group("/buses"), a)
	}

	h.SetRouter(r)
	return r
}

func mountEntries(g *gin.RouterGroup, a *h.API) {
	g.GET("", a.ListEntries)
	g.POST("", a.CreateEntry)
	g.GET("/timetable.pdf", a.TimetablePDF)
	g.GET("/:id", a.GetEntry)
	g.PUT("/:id", a.UpdateEntry)
	g.PATCH("/:id", a.UpdateEntry)
	g.DELETE("/:id", a.DeleteEntry)
}
