package app

import (
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/cache"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/config"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/handlers"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/middleware"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/repo"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *logrus.Entry, db *pgxpool.Pool, rdb *redis.Client) {
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics())

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", middleware.MetricsHandler())
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	showDetail := !cfg.App.IsProd()

	generalLimiter := middleware.NewRateLimiter(rdb,
		"general", cfg.RateLimit.Window.Duration(), cfg.RateLimit.MaxRequests, false)
	authLimiter := middleware.NewRateLimiter(rdb,
		"auth", cfg.RateLimit.Window.Duration(), cfg.RateLimit.AuthMaxRequests, true)

	api := r.Group("/api/v1", generalLimiter.Handler())

	tokens := auth.NewTokenService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpire.Duration(), cfg.JWT.RefreshExpire.Duration())
	refreshStore := auth.NewRefreshStore(rdb, tokens.RefreshTTL())

	userRepo := repo.NewPGUserRepo(db)
	auditRepo := repo.NewPGAuditRepo(db)
	authSvc := service.NewAuthService(userRepo, auditRepo, tokens, refreshStore, log,
		cfg.Auth.BcryptCost, cfg.Auth.MaxLoginAttempts, cfg.Auth.LockDuration.Duration())
	authHandler := handlers.NewAuthHandler(authSvc, log, showDetail)
	registerAuthRoutes(api, authHandler, tokens, authLimiter)

	protected := api.Group("", auth.RequireAuth(tokens))
	taskRepo := repo.NewPGTaskRepo(db)
	taskCache := cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	taskSvc := service.NewTaskService(taskRepo, userRepo, auditRepo, taskCache, log,
		cfg.Audit.DefaultLimit, cfg.Audit.Retention.Duration())
	taskHandler := handlers.NewTaskHandler(taskSvc, log, showDetail)
	registerTaskRoutes(protected, taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Task Manager API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.POST("/tasks/:id/share", h.Share)
	api.DELETE("/tasks/:id/share", h.Unshare)
	api.GET("/tasks/:id/audit", h.AuditLog)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler,
	tokens *auth.TokenService, limiter *middleware.RateLimiter) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", limiter.Handler(), h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.GET("/auth/profile", auth.RequireAuth(tokens), h.Profile)
}
