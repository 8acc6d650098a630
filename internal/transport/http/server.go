package http

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"quickgpt/internal/bootstrap"
	"quickgpt/internal/transport/http/handler"
	"quickgpt/internal/transport/http/middleware"
)

// Routes bundles the handlers and auth middleware mounted by RegisterRoutes.
type Routes struct {
	Health  *handler.HealthHandler
	User    *handler.UserHandler
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	Credit  *handler.CreditHandler
	Gallery *handler.GalleryHandler

	Auth         gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	if origins := app.Config.App.AllowOrigins; len(origins) > 0 {
		router.Use(corsMiddleware(origins))
	}

	svc := app.Services
	secret := app.Config.Auth.JWTSecret
	RegisterRoutes(router, Routes{
		Health:       handler.NewHealthHandler(app),
		User:         handler.NewUserHandler(svc.Auth),
		Chat:         handler.NewChatHandler(svc.Chats),
		Message:      handler.NewMessageHandler(svc.Pipeline),
		Credit:       handler.NewCreditHandler(svc.Credits, app.Config.Payment.WebhookSecret),
		Gallery:      handler.NewGalleryHandler(svc.Gallery),
		Auth:         middleware.AuthJWT(secret, svc.Auth),
		OptionalAuth: middleware.OptionalAuthJWT(secret, svc.Auth),
	})
	return router
}

func RegisterRoutes(router gin.IRouter, r Routes) {
	if r.Health != nil {
		router.GET("/healthz", r.Health.Check)
	}

	api := router.Group("/api")

	userGroup := api.Group("/user")
	userGroup.POST("/register", r.User.Register)
	userGroup.POST("/login", r.User.Login)
	userGroup.GET("/data", r.Auth, r.User.Data)
	userGroup.GET("/published-images", r.Gallery.List)

	api.GET("/gallery", r.Gallery.List)
	api.POST("/gallery", r.Gallery.List)

	chatGroup := api.Group("/chat")
	chatGroup.Use(r.Auth)
	chatGroup.GET("/create", r.Chat.Create)
	chatGroup.GET("/get", r.Chat.List)
	chatGroup.POST("/delete", r.Chat.Delete)

	messageGroup := api.Group("/message")
	messageGroup.Use(r.Auth)
	messageGroup.POST("/text", r.Message.Text)
	messageGroup.POST("/image", r.Message.Image)

	creditGroup := api.Group("/credit")
	creditGroup.GET("/plan", r.OptionalAuth, r.Credit.Plans)
	creditGroup.POST("/purchase", r.Auth, r.Credit.Purchase)
	creditGroup.POST("/webhook", r.Credit.Webhook)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}
