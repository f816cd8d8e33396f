package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table. A message belongs either to a
// direct conversation (RecipientID set) or to a group channel (GroupID set),
// never both. Rows are immutable once created; removal is a soft delete.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.NullUUID
	GroupID     uuid.NullUUID
	Body        sql.NullString
	ReplyToID   uuid.NullUUID

	AttachmentURL  sql.NullString
	AttachmentMime sql.NullString
	AttachmentSize sql.NullInt64
	AttachmentName sql.NullString

	CreatedAt time.Time
	DeletedAt sql.NullTime
}

// IsDirect reports whether the message belongs to a direct pair conversation.
func (m Message) IsDirect() bool {
	return m.RecipientID.Valid
}

// Reaction represents the message_reactions table.
// Unique per (message_id, user_id, kind), enforced by the store.
type Reaction struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	UserID    uuid.UUID
	Kind      ReactionKind
	CreatedAt time.Time
}

// ReactionKind is the set of supported reaction types.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionHeart ReactionKind = "HEART"
	ReactionSmile ReactionKind = "SMILE"
)

func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionHeart, ReactionSmile:
		return true
	}
	return false
}

// Attachment describes an uploaded file to be carried on a message.
// The upload happens before the message insert; a message is never created
// if its upload failed.
type Attachment struct {
	URL         string
	ContentType string
	SizeBytes   int64
	DisplayName string
}

func (Message) TableName() string {
	return "messages"
}

func (Reaction) TableName() string {
	return "message_reactions"
}
