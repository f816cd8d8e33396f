package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"carebridge-chat/internal/services"
	"carebridge-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	authorizer *ChannelAuthorizer
}

func NewHandler(auth *services.AuthService, hub *Hub, authorizer *ChannelAuthorizer) *Handler {
	return &Handler{auth: auth, hub: hub, authorizer: authorizer}
}

// clientFrame is the inbound control protocol: clients subscribe to the
// conversation channels they are viewing and unsubscribe when they leave.
type clientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, claims.UserID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	// Pong responses to WriteLoop's pings extend the read deadline, so an
	// idle-but-responsive subscriber is never dropped.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "subscribe":
			if client.IsSubscribed(frame.Channel) {
				continue
			}
			ok, err := h.authorizer.CanSubscribe(c.Request.Context(), client.UserID, frame.Channel)
			if err == nil && ok {
				h.hub.Subscribe(client, frame.Channel)
			}
		case "unsubscribe":
			h.hub.Unsubscribe(client, frame.Channel)
		}
	}

	h.hub.Unregister(client)
}
