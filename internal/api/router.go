package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(services.Event, log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(sessionMiddleware(services.Auth, log))

	require := permissionGuard(cfg.Auth.PermissionControl)

	// Handlers
	authHandler := NewAuthHandler(services, log)
	userHandler := NewUserHandler(services, cfg, log)
	categoryHandler := NewCategoryHandler(services, log)
	articleHandler := NewArticleHandler(services, cfg, log)
	commentHandler := NewCommentHandler(services, cfg, log)
	eventHandler := NewEventHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/login", authHandler.Login)
		apiGroup.POST("/logout", authHandler.Logout)

		apiGroup.GET("/users", require(models.PermReadUser), userHandler.List)
		apiGroup.GET("/user/:id", require(models.PermReadUser), userHandler.Get)
		apiGroup.POST("/user", require(models.PermCreateUser), userHandler.Create)
		apiGroup.PATCH("/user", require(models.PermModifyUser), userHandler.Modify)
		apiGroup.PATCH("/user/:id", require(models.PermModifyUser), userHandler.Modify)
		apiGroup.DELETE("/user/:id", require(models.PermDeleteUser), userHandler.Delete)

		apiGroup.GET("/categories", require(models.PermReadCategory), categoryHandler.List)
		apiGroup.GET("/category/:id", require(models.PermReadCategory), categoryHandler.Get)
		apiGroup.POST("/category", require(models.PermCreateCategory), categoryHandler.Create)
		apiGroup.PATCH("/category/:id", require(models.PermEditCategory), categoryHandler.Rename)
		apiGroup.DELETE("/category/:id", require(models.PermEditCategory), categoryHandler.Delete)

		apiGroup.GET("/articles", require(models.PermReadArticle), articleHandler.List)
		apiGroup.GET("/article/:id", require(models.PermReadArticle), articleHandler.Get)
		apiGroup.POST("/article", require(models.PermPostArticle), articleHandler.Create)
		apiGroup.PATCH("/article/:id", require(models.PermEditArticle), articleHandler.Edit)
		apiGroup.DELETE("/article/:id", require(models.PermEditArticle), articleHandler.Delete)
		apiGroup.GET("/article-types", require(models.PermPostArticle), articleHandler.Types)

		apiGroup.GET("/article/:id/comments", require(models.PermReadComment), commentHandler.List)
		apiGroup.GET("/article/:id/comment/:cid", require(models.PermReadComment), commentHandler.Get)
		apiGroup.POST("/article/:id/comment", require(models.PermWriteComment), commentHandler.Create)
		apiGroup.POST("/article/:id/comment/:cid", require(models.PermWriteComment), commentHandler.Create)
		apiGroup.PATCH("/article/:id/comment/:cid", require(models.PermReviewComment), commentHandler.Review)
		apiGroup.DELETE("/article/:id/comment/:cid", require(models.PermReviewComment), commentHandler.Delete)

		apiGroup.GET("/events", require(models.PermConfigureSystem), eventHandler.List)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "cage",
	})
}

// metricsHandler returns content metrics
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		users, _ := services.User.Count(ctx)
		articles, _ := services.Article.Count(ctx)
		comments, _ := services.Comment.Count(ctx)
		events, _ := services.Event.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users":    users,
				"articles": articles,
				"comments": comments,
				"events":   events,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// sessionMiddleware resolves the session cookie into a user on the
// request context. Anonymous requests pass through untouched.
func sessionMiddleware(auth service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := auth.UserFromSession(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve session")
			c.Next()
			return
		}
		if user != nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// permissionGuard builds the per-route permission middleware. With
// permission control disabled every check passes, which matches the
// test configuration of the system.
func permissionGuard(enabled bool) func(models.Permission) gin.HandlerFunc {
	return func(perm models.Permission) gin.HandlerFunc {
		return func(c *gin.Context) {
			if enabled && !currentUser(c).Can(perm) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"$errors": gin.H{"permission": "you are not allowed to perform this operation"},
				})
				return
			}
			c.Next()
		}
	}
}

// recoveryMiddleware handles panics. Every unhandled panic lands in
// the audit log as an Exception event alongside the error log line.
func recoveryMiddleware(events service.EventService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				events.Record(eventMeta(c), models.EventException,
					fmt.Sprintf("%v\n%s", err, debug.Stack()))
				c.JSON(http.StatusInternalServerError, gin.H{
					"$errors": gin.H{"internal": "internal server error"},
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
