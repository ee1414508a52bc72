package router

import (
	"ridepool/config"
	"ridepool/internal/handler"
	"ridepool/internal/middleware"
	"ridepool/internal/repository"
	"ridepool/internal/service"
	"ridepool/internal/ws"
	"ridepool/pkg/checkout"
	"ridepool/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine.
func Setup(cfg *config.Config, db *gorm.DB, provider checkout.Provider, cloud cloudinary.Client) *gin.Engine {
	rideRepo := repository.NewRideRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	rideCodeRepo := repository.NewRideCodeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)

	emitter := service.NewNotificationService(notificationRepo, historyRepo)
	bookingSvc := service.NewBookingService(
		rideRepo, paymentRepo, participantRepo, provider, emitter,
		cfg.Checkout.Currency, cfg.Checkout.SuccessURL, cfg.Checkout.CancelURL,
	)
	settleSvc := service.NewSettlementService(paymentRepo, rideCodeRepo, emitter)

	rideHandler := handler.NewRideHandler(bookingSvc, rideRepo, participantRepo, emitter)
	paymentHandler := handler.NewPaymentHandler(provider, settleSvc, paymentRepo)
	webhookHandler := handler.NewCheckoutWebhookHandler(settleSvc, cfg)
	chatHandler := handler.NewChatHandler(rideRepo, participantRepo, messageRepo, cloud)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	meHandler := handler.NewMeHandler(userRepo, rideRepo, historyRepo)

	chatHub := ws.NewChatHub()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider pushes here; authenticated by signature, not by JWT.
	r.POST("/webhooks/checkout", webhookHandler.Handle)

	// Websocket auth happens inside the handler via query params.
	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, rideRepo, rideCodeRepo, messageRepo))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(&cfg.JWT))
	{
		rides := api.Group("/rides")
		{
			rides.POST("", rideHandler.Create)
			rides.GET("", rideHandler.List)
			rides.GET("/:id", rideHandler.Get)
			rides.GET("/code/:code", rideHandler.GetByCode)
			rides.POST("/:id/join", rideHandler.Join)
			rides.GET("/:id/participants", rideHandler.Participants)
			rides.POST("/:id/cancel", rideHandler.Cancel)
			rides.POST("/:id/complete", rideHandler.Complete)
			rides.GET("/:id/messages", chatHandler.ListMessages)
			rides.POST("/:id/messages", chatHandler.PostMessage)
			rides.POST("/:id/messages/audio", chatHandler.PostAudio)
			rides.POST("/:id/messages/image", chatHandler.PostImage)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/session/:session_id", paymentHandler.SessionStatus)
			payments.GET("", paymentHandler.ListMine)
		}

		me := api.Group("/me")
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/rides", meHandler.GetRides)
			me.GET("/history", meHandler.GetHistory)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
