package server

import (
	"carebridge-chat/internal/domain/user"
	"carebridge-chat/internal/handler"
	"carebridge-chat/internal/middleware"
	"carebridge-chat/internal/services"
	"carebridge-chat/internal/websocket"
	"carebridge-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth    *services.AuthService
	Chat    *services.ChatService
	Groups  *services.GroupService
	Uploads services.Uploader
	Hub     *websocket.Hub
	WSAuth  *websocket.ChannelAuthorizer
	Logger  *logger.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(deps.Logger))

	authHandler := handler.NewAuthHandler(deps.Auth)
	messageHandler := handler.NewMessageHandler(deps.Chat)
	groupHandler := handler.NewGroupHandler(deps.Groups)
	uploadHandler := handler.NewUploadHandler(deps.Uploads)
	wsHandler := websocket.NewHandler(deps.Auth, deps.Hub, deps.WSAuth)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_clients": deps.Hub.ClientCount()})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Auth))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/me", authHandler.Me)

			authed.POST("/messages", messageHandler.Send)
			authed.GET("/messages/direct/:peerID", messageHandler.ListDirect)
			authed.GET("/messages/group/:groupID", messageHandler.ListGroup)
			authed.DELETE("/messages/:id", messageHandler.Delete)
			authed.POST("/messages/:id/reactions", messageHandler.ToggleReaction)
			authed.GET("/messages/:id/reactions", messageHandler.ListReactions)

			authed.GET("/groups", groupHandler.List)
			authed.GET("/groups/:id/members", groupHandler.ListMembers)
			// self-leave is allowed; removing others is re-checked in the service
			authed.DELETE("/groups/:id/members/:userID", groupHandler.RemoveMember)

			authed.POST("/uploads", uploadHandler.Store)

			privileged := authed.Group("")
			privileged.Use(middleware.RequireRole(user.RoleNGO, user.RoleAdmin))
			{
				privileged.POST("/groups", groupHandler.Create)
				privileged.DELETE("/groups/:id", groupHandler.Delete)
				privileged.POST("/groups/:id/members", groupHandler.AddMember)
			}
		}
	}

	r.GET("/ws", wsHandler.Connect)

	return r
}
