package app

import (
	"context"
	"devforge_backend/internal/config"
	"devforge_backend/internal/controller"
	"devforge_backend/internal/repository"
	"devforge_backend/internal/service"
	"devforge_backend/pkg/configwatcher"
	"devforge_backend/pkg/database"
	"devforge_backend/pkg/logger"
	"devforge_backend/pkg/monitoring"
	"devforge_backend/pkg/security"
	"devforge_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user     *repository.UserRepository
	projects repository.ProjectStore
}

type services struct {
	ai        *service.AIService
	auth      *service.AuthService
	user      *service.UserService
	storage   *service.StorageService
	project   *service.ProjectService
	workspace *service.WorkspaceService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	project   *controller.ProjectController
	workspace *controller.WorkspaceController
	health    *controller.HealthController
}

// initRepositories picks the persistence variant once, at boot: the GORM
// store when a database is configured, the local file store otherwise.
// Nothing downstream ever branches on the backend in use.
func (a *App) initRepositories(db *gorm.DB, cfg *config.Config) *repositories {
	repos := &repositories{}

	if db != nil {
		repos.user = repository.NewUserRepository(db)
		repos.projects = repository.NewProjectRepository(db)
	} else {
		repos.projects = repository.NewLocalProjectStore(cfg.Projects.LocalPath)
	}

	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.storage = service.NewStorageService(cfg)

	var cache service.ArtifactCache
	if rdb != nil {
		cache = service.NewRedisArtifactCache(rdb)
	} else {
		cache = service.NewMemoryArtifactCache()
	}

	s.workspace = service.NewWorkspaceService(s.ai, repos.projects, cache)
	s.project = service.NewProjectService(s.ai, repos.projects, s.workspace)

	if repos.user != nil {
		s.auth = service.NewAuthService(repos.user, cfg)
		s.user = service.NewUserService(repos.user)
	}

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	c := &controllers{
		project:   controller.NewProjectController(s.project),
		workspace: controller.NewWorkspaceController(s.workspace),
		health:    controller.NewHealthController(db),
	}

	if s.auth != nil {
		c.auth = controller.NewAuthController(s.auth)
		c.user = controller.NewUserController(s.user, s.storage)
	}

	return c
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	var db *gorm.DB
	var rdb *redis.Client
	var err error

	if cfg.LocalMode() {
		logger.Log.Info("No database configured, running in local mode",
			zap.String("projects", cfg.Projects.LocalPath))
	} else {
		// Migrations run automatically outside release mode; in release
		// they need the explicit flag.
		migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
		db, err = database.InitDB(&cfg.Database, migrate)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}

		if cfg.Redis.Host != "" {
			rdb, err = database.InitRedis(&cfg.Redis)
			if err != nil {
				logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			}
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("devforge-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// Endpoint settings can change without a restart; everything else
	// still requires one.
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		services.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("AI endpoint configuration reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
