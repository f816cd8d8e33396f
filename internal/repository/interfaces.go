package repository

import (
	"context"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/domain/group"
	"carebridge-chat/internal/domain/user"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	ListDirect(ctx context.Context, a, b uuid.UUID) ([]chat.Message, error)
	ListGroup(ctx context.Context, groupID uuid.UUID) ([]chat.Message, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type ReactionRepository interface {
	// Toggle flips membership of (messageID, userID, kind) atomically and
	// reports whether the reaction exists afterwards.
	Toggle(ctx context.Context, messageID, userID uuid.UUID, kind chat.ReactionKind) (bool, error)
	ListForMessage(ctx context.Context, messageID uuid.UUID) ([]chat.Reaction, error)
}

type GroupRepository interface {
	Create(ctx context.Context, ch *group.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (group.Channel, error)
	List(ctx context.Context) ([]group.Channel, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, m *group.Member) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]group.Member, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	CreateSession(ctx context.Context, s *user.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (user.Session, error)
	UpdateSession(ctx context.Context, s user.Session) error
	RevokeSession(ctx context.Context, id uuid.UUID) error
}
