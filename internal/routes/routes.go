package routes

import (
	"projectflow-api/internal/handlers"
	"projectflow-api/internal/middleware"
	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin engine with all API routes. The realtime gateway
// is injected into the handlers that produce events.
func SetupRoutes(gateway *realtime.Gateway) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "ProjectFlow API is running",
		})
	})

	ticketHandler := handlers.NewTicketHandler(gateway)
	meetingHandler := handlers.NewMeetingHandler(gateway)
	notificationHandler := handlers.NewNotificationHandler(gateway)
	wsHandler := &handlers.WebSocketHandler{Gateway: gateway}

	// WebSocket endpoint: public, authentication happens over the socket
	ginRouter.GET("/ws", wsHandler.Handle)

	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Profile endpoints
		protectedRoutes.GET("/auth/profile", handlers.GetProfile)
		protectedRoutes.PUT("/auth/profile", handlers.UpdateProfile)
		protectedRoutes.PUT("/auth/change-password", handlers.ChangePassword)
		protectedRoutes.GET("/auth/users", handlers.GetAllUsers)

		// Project endpoints
		protectedRoutes.POST("/projects", handlers.CreateProject)
		protectedRoutes.GET("/projects", handlers.GetProjects)
		protectedRoutes.GET("/projects/:id", handlers.GetProject)
		protectedRoutes.PUT("/projects/:id", handlers.UpdateProject)
		protectedRoutes.DELETE("/projects/:id", handlers.DeleteProject)
		protectedRoutes.POST("/projects/:id/members", handlers.AddMember)
		protectedRoutes.DELETE("/projects/:id/members/:userId", handlers.RemoveMember)

		// Ticket endpoints
		protectedRoutes.POST("/tickets", ticketHandler.Create)
		protectedRoutes.GET("/tickets", ticketHandler.List)
		protectedRoutes.GET("/tickets/kanban/:projectId", ticketHandler.Kanban)
		protectedRoutes.GET("/tickets/:id", ticketHandler.Get)
		protectedRoutes.PUT("/tickets/:id", ticketHandler.Update)
		protectedRoutes.PUT("/tickets/:id/move", ticketHandler.Move)
		protectedRoutes.DELETE("/tickets/:id", ticketHandler.Delete)
		protectedRoutes.POST("/tickets/:id/comments", ticketHandler.AddComment)
		protectedRoutes.PUT("/tickets/:id/comments/:commentId", ticketHandler.UpdateComment)
		protectedRoutes.DELETE("/tickets/:id/comments/:commentId", ticketHandler.DeleteComment)

		// Meeting endpoints
		protectedRoutes.POST("/meetings", meetingHandler.Create)
		protectedRoutes.GET("/meetings", meetingHandler.List)
		protectedRoutes.GET("/meetings/upcoming", meetingHandler.Upcoming)
		protectedRoutes.GET("/meetings/:id", meetingHandler.Get)
		protectedRoutes.PUT("/meetings/:id", meetingHandler.Update)
		protectedRoutes.DELETE("/meetings/:id", meetingHandler.Delete)
		protectedRoutes.POST("/meetings/:id/respond", meetingHandler.Respond)
		protectedRoutes.POST("/meetings/:id/participants", meetingHandler.AddParticipants)

		// Notification endpoints
		protectedRoutes.GET("/notifications", notificationHandler.List)
		protectedRoutes.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		protectedRoutes.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		protectedRoutes.DELETE("/notifications/:id", notificationHandler.Delete)
		protectedRoutes.DELETE("/notifications", notificationHandler.ClearAll)

		// Dashboard endpoints
		protectedRoutes.GET("/dashboard", handlers.GetDashboard)
		protectedRoutes.GET("/dashboard/activity", handlers.GetActivityFeed)
	}

	return ginRouter
}
