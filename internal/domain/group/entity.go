package group

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Channel represents the group_channels table
type Channel struct {
	ID          uuid.UUID
	Name        string
	Description sql.NullString
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

// Member represents the group_members table
type Member struct {
	GroupID  uuid.UUID
	UserID   uuid.UUID
	AddedBy  uuid.NullUUID
	JoinedAt time.Time
}

func (Channel) TableName() string {
	return "group_channels"
}

func (Member) TableName() string {
	return "group_members"
}
