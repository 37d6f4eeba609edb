package app

import (
	"devforge_backend/docs"
	"devforge_backend/internal/config"
	"devforge_backend/internal/middleware"
	"devforge_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	if cfg.LocalMode() {
		// Local mode has no identity: every project belongs to owner 0
		// and the auth routes are simply not registered.
		local := router.Group("/api")
		{
			local.GET("/projects", c.project.List)
			a.registerProjectRoutes(local, c)
		}
		return
	}

	public.POST("/register", c.auth.Register)
	public.POST("/login", c.auth.Login)

	// Listing degrades to empty for anonymous callers instead of a 401,
	// so the history view renders without blocking on sign-in.
	router.GET("/api/projects", middleware.TryAuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), c.project.List)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		a.registerProjectRoutes(authGroup, c)
	}
}

func (a *App) registerProjectRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/projects", c.project.Create)
	rg.GET("/projects/:id", c.project.Get)
	rg.DELETE("/projects/:id", c.project.Delete)

	rg.GET("/workspace/:id", c.workspace.Open)
	rg.POST("/workspace/:id/mentor", c.workspace.SendMentorMessage)
	rg.POST("/workspace/:id/review", c.workspace.SubmitReview)
	rg.DELETE("/workspace/:id/review", c.workspace.ResetReview)
	rg.POST("/workspace/:id/solution", c.workspace.RevealSolution)
	rg.POST("/workspace/:id/leave", c.workspace.Leave)
}
