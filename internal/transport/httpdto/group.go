package httpdto

import (
	"time"

	"carebridge-chat/internal/domain/group"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type GroupView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberView struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewGroupView(ch group.Channel) GroupView {
	v := GroupView{
		ID:        ch.ID.String(),
		Name:      ch.Name,
		CreatedBy: ch.CreatedBy.String(),
		CreatedAt: ch.CreatedAt,
	}
	if ch.Description.Valid {
		v.Description = ch.Description.String
	}
	return v
}

func NewGroupViews(channels []group.Channel) []GroupView {
	views := make([]GroupView, 0, len(channels))
	for _, ch := range channels {
		views = append(views, NewGroupView(ch))
	}
	return views
}

func NewMemberViews(members []group.Member) []MemberView {
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{
			GroupID:  m.GroupID.String(),
			UserID:   m.UserID.String(),
			JoinedAt: m.JoinedAt,
		})
	}
	return views
}
