package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kasbino/kasbino-backend/config"
	"github.com/kasbino/kasbino-backend/internal/app/controller"
	"github.com/kasbino/kasbino-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	businessController *controller.BusinessController
	ratingController   *controller.RatingController
	chatController     *controller.ChatController
	uploadController   *controller.UploadController
	contactController  *controller.ContactController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	businessController *controller.BusinessController,
	ratingController *controller.RatingController,
	chatController *controller.ChatController,
	uploadController *controller.UploadController,
	contactController *controller.ContactController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		businessController: businessController,
		ratingController:   ratingController,
		chatController:     chatController,
		uploadController:   uploadController,
		contactController:  contactController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "KASBINO API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		v1.GET("/categories", r.businessController.ListCategories)

		businesses := v1.Group("/businesses")
		{
			businesses.GET("", r.businessController.List)
			businesses.GET("/cities", r.businessController.ListCities)
			businesses.GET("/:slug",
				r.authMiddleware.OptionalAuthenticate(),
				r.businessController.GetDetail,
			)
			businesses.POST("",
				r.authMiddleware.Authenticate(),
				r.businessController.Create,
			)

			businesses.GET("/:slug/reviews", r.ratingController.List)
			businesses.GET("/:slug/reviews/me",
				r.authMiddleware.Authenticate(),
				r.ratingController.GetMine,
			)
			businesses.POST("/:slug/reviews",
				r.authMiddleware.Authenticate(),
				r.ratingController.Create,
			)
			businesses.PUT("/:slug/reviews",
				r.authMiddleware.Authenticate(),
				r.ratingController.Update,
			)
			businesses.DELETE("/:slug/reviews",
				r.authMiddleware.Authenticate(),
				r.ratingController.Delete,
			)

			businesses.POST("/:slug/chat",
				r.authMiddleware.Authenticate(),
				r.chatController.OpenConversation,
			)
		}

		me := v1.Group("/me")
		me.Use(r.authMiddleware.Authenticate())
		{
			me.GET("/businesses", r.businessController.MyBusinesses)
		}

		chat := v1.Group("/chat")
		chat.Use(r.authMiddleware.Authenticate())
		{
			chat.GET("/conversations", r.chatController.ListConversations)
			chat.GET("/conversations/:id/messages", r.chatController.GetMessages)
			chat.POST("/conversations/:id/messages", r.chatController.SendMessage)
			chat.POST("/conversations/:id/join", r.chatController.JoinConversation)
			chat.POST("/conversations/:id/leave", r.chatController.LeaveConversation)
			chat.GET("/ws", r.chatController.WebSocketHandler)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		v1.POST("/contact", r.contactController.Submit)
		v1.GET("/contact",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("admin"),
			r.contactController.List,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
