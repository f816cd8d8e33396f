package httpdto

import (
	"time"

	"carebridge-chat/internal/domain/chat"
)

type ToggleReactionRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type ToggleReactionResponse struct {
	Active bool `json:"active"`
}

type ReactionView struct {
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReactionViews(reactions []chat.Reaction) []ReactionView {
	views := make([]ReactionView, 0, len(reactions))
	for _, r := range reactions {
		views = append(views, ReactionView{
			MessageID: r.MessageID.String(),
			UserID:    r.UserID.String(),
			Kind:      string(r.Kind),
			CreatedAt: r.CreatedAt,
		})
	}
	return views
}
