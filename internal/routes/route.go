package routes

import (
	"github.com/campus-hub/eventhub/internal/container"
	"github.com/campus-hub/eventhub/internal/handlers"
	"github.com/campus-hub/eventhub/internal/middleware"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = services.MaxMediaBytes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Options.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))

	secure := container.Options.SecureCookies

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "eventhub-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.Signup(container.UserService))
		v1.POST("/login", handlers.Login(container.UserService, container.Tokens, secure))
		v1.POST("/logout", handlers.Logout(secure))
		v1.POST("/admin/login", handlers.AdminLogin(container.AdminService, container.Tokens, secure))
		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/:id", handlers.GetEvent(container.EventService))
		v1.GET("/events/:id/media", handlers.ListMedia(container.MediaService))
	}

	auth := middleware.AuthMiddleware(container.Tokens, container.Logger)

	// admins receive broadcasts only
	v1.GET("/stream", auth, handlers.Stream(container.Hub))

	protected := v1.Group("/")
	protected.Use(auth, middleware.UsersOnly())

	me := protected.Group("/me")
	{
		me.GET("", handlers.GetProfile(container.UserService))
		me.PATCH("", handlers.UpdateProfile(container.UserService))
		me.DELETE("", handlers.DeleteAccount(container.UserService))
		me.POST("/password", handlers.ChangePassword(container.UserService))
		me.GET("/tickets", handlers.ListTickets(container.BookingService))
		me.GET("/notifications", handlers.ListNotifications(container.NotificationService))
		me.POST("/notifications/read", handlers.MarkNotificationsRead(container.NotificationService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.PUT("/:id", handlers.EditEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))

		eventRoutes.POST("/:id/book", handlers.BookEvent(container.BookingService))
		eventRoutes.DELETE("/:id/book", handlers.CancelBooking(container.BookingService))
		eventRoutes.DELETE("/:id/bookings/:reg", handlers.OrganizerCancelBooking(container.BookingService))

		eventRoutes.POST("/:id/waitlist", handlers.JoinWaitlist(container.BookingService))
		eventRoutes.DELETE("/:id/waitlist", handlers.LeaveWaitlist(container.BookingService))
		eventRoutes.GET("/:id/waitlist", handlers.ListWaitlist(container.BookingService))

		eventRoutes.GET("/:id/volunteers", handlers.ListVolunteers(container.VolunteerService))
		eventRoutes.POST("/:id/volunteers", handlers.AddVolunteer(container.VolunteerService))
		eventRoutes.POST("/:id/volunteers/respond", handlers.RespondVolunteer(container.VolunteerService))
		eventRoutes.DELETE("/:id/volunteers/me", handlers.LeaveVolunteer(container.VolunteerService))
		eventRoutes.DELETE("/:id/volunteers/:reg", handlers.RemoveVolunteer(container.VolunteerService))

		eventRoutes.POST("/:id/media", handlers.UploadMedia(container.MediaService))

		eventRoutes.POST("/:id/messages", handlers.SendMessage(container.MessageService))
		eventRoutes.POST("/:id/messages/media", handlers.SendMediaMessage(container.MessageService))
		eventRoutes.GET("/:id/messages", handlers.GetThread(container.MessageService))
		eventRoutes.GET("/:id/conversations", handlers.ListConversations(container.MessageService))

		eventRoutes.POST("/:id/feedback", handlers.SubmitFeedback(container.FeedbackService))
		eventRoutes.GET("/:id/feedback", handlers.ListFeedback(container.FeedbackService))
		eventRoutes.GET("/:id/feedback/check", handlers.CheckFeedback(container.FeedbackService))
		eventRoutes.GET("/:id/feedback/user/:reg", handlers.GetFeedback(container.FeedbackService))
	}

	protected.DELETE("/media/:mediaId", handlers.DeleteMedia(container.MediaService))
	protected.DELETE("/messages/:messageId", handlers.DeleteMessage(container.MessageService))

	admin := v1.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	{
		admin.GET("/who", handlers.AdminWho(container.AdminService))
		admin.PUT("/credentials", handlers.AdminChangeCredentials(container.AdminService))
		admin.GET("/stats", handlers.AdminStats(container.AdminService))
		admin.GET("/integrity", handlers.AdminIntegrity(container.AdminService))

		admin.GET("/students", handlers.AdminListStudents(container.AdminService))
		admin.GET("/organizers", handlers.AdminListOrganizers(container.AdminService))
		admin.GET("/organizers/pending", handlers.AdminListPendingOrganizers(container.AdminService))
		admin.POST("/organizers/:reg/verify", handlers.AdminVerifyOrganizer(container.AdminService))
		admin.DELETE("/organizers/:reg", handlers.AdminRemoveOrganizer(container.AdminService))
		admin.DELETE("/users/:reg", handlers.AdminDeleteUser(container.AdminService))
		admin.POST("/users/:reg/password", handlers.AdminResetPassword(container.AdminService))

		admin.GET("/events", handlers.AdminListEvents(container.AdminService))
		admin.DELETE("/events/:id", handlers.AdminDeleteEvent(container.AdminService))
		admin.GET("/events/:id/media", handlers.AdminListMedia(container.AdminService))
		admin.DELETE("/media/:mediaId", handlers.AdminDeleteMedia(container.AdminService))
	}

	return r
}
