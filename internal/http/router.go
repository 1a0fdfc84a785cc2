package api

import (
	stdhttp "net/http"

	intconfig "backoffice/internal/config"
	h "backoffice/internal/http/handlers"
	"backoffice/internal/http/middleware"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the gateway. Everything under /api except the system
// endpoints requires a session. The audit log is read from the gateway's own
// database, so it also requires a verified token.
func NewRouter(env intconfig.Env, deps h.Deps) *gin.Engine {
	deps.Env = env
	h.Configure(deps)

	r := gin.New()
	r.Use(
		middleware.RequestID(env.RequestIDHeader),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.AllowedOrigins(), env.RequestIDHeader),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/audit-check", h.AuditCheck)
		api.GET("/routes", h.Routes)
	}

	protected := api.Group("")
	protected.Use(middleware.Session(env.AuthCookie, env.JWTKey()))
	if roles := env.AdminRoleList(); len(roles) > 0 {
		protected.Use(middleware.RequireRoles(roles...))
	}
	{
		res := protected.Group("/resources")
		res.GET("", h.ListResources)
		res.GET("/:resource", h.GetResourcePage)
		res.POST("/:resource", h.CreateResource)
		res.GET("/:resource/export.pdf", h.ExportResource)
		res.POST("/:resource/:id", h.UpdateResource)
		res.DELETE("/:resource/:id", h.DeleteResource)
		res.POST("/:resource/:id/reorder", h.ReorderResource)

		protected.POST("/uploads/:folder", h.UploadImage)
		protected.POST("/salons/:id/working-hours", h.SaveWorkingHours)
		protected.GET("/audit", middleware.RequireVerified(), h.GetAuditLog)
		protected.GET("/live/:resource", h.LiveResource)
	}

	h.SetRouter(r)
	return r
}
