package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/events"
	"carebridge-chat/internal/repository"
	carebridge_errors "carebridge-chat/pkg/errors"
	"carebridge-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService owns message and reaction operations for both direct pairs and
// group channels. Writes publish change events after the row is committed;
// readers refetch on those events or on their poll, so the service never
// appends to any client-side cache.
type ChatService struct {
	messageRepo  repository.MessageRepository
	reactionRepo repository.ReactionRepository
	groupRepo    repository.GroupRepository
	uploads      Uploader
	publisher    events.Publisher
	log          *logger.Logger
}

func NewChatService(
	messageRepo repository.MessageRepository,
	reactionRepo repository.ReactionRepository,
	groupRepo repository.GroupRepository,
	uploads Uploader,
	publisher events.Publisher,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		groupRepo:    groupRepo,
		uploads:      uploads,
		publisher:    publisher,
		log:          log,
	}
}

type SendMessageInput struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID // direct send; mutually exclusive with GroupID
	GroupID     uuid.UUID
	Body        string
	ReplyToID   uuid.UUID
	Upload      *UploadInput     // staged file; uploaded before the insert
	Attachment  *chat.Attachment // already-uploaded descriptor; mutually exclusive with Upload
}

// ListDirect returns the full direct history between the caller and peer,
// ascending by created time, soft-deleted rows excluded.
func (s *ChatService) ListDirect(ctx context.Context, callerID, peerID uuid.UUID) ([]chat.Message, error) {
	if callerID == uuid.Nil {
		return nil, carebridge_errors.ErrNotAuthenticated
	}
	if peerID == uuid.Nil {
		return nil, carebridge_errors.ErrInvalidInput
	}
	return s.messageRepo.ListDirect(ctx, callerID, peerID)
}

func (s *ChatService) ListGroup(ctx context.Context, callerID, groupID uuid.UUID) ([]chat.Message, error) {
	if callerID == uuid.Nil {
		return nil, carebridge_errors.ErrNotAuthenticated
	}
	ok, err := s.groupRepo.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, carebridge_errors.ErrForbidden
	}
	return s.messageRepo.ListGroup(ctx, groupID)
}

// SendMessage validates the conversation target, uploads the staged file if
// any, and inserts the row. An upload failure aborts the send entirely; a
// message without its attachment is never created. A pre-uploaded descriptor
// (from the uploads endpoint) may be passed instead of a staged file. The created message is
// not appended to any local list; the caller invalidates its refresh
// controller and the next fetch observes the row.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (chat.Message, error) {
	if in.SenderID == uuid.Nil {
		return chat.Message{}, carebridge_errors.ErrNotAuthenticated
	}
	if (in.RecipientID == uuid.Nil) == (in.GroupID == uuid.Nil) {
		return chat.Message{}, carebridge_errors.ErrInvalidInput
	}
	if strings.TrimSpace(in.Body) == "" && in.Upload == nil && in.Attachment == nil {
		return chat.Message{}, carebridge_errors.ErrInvalidInput
	}
	if in.Upload != nil && in.Attachment != nil {
		return chat.Message{}, carebridge_errors.ErrInvalidInput
	}
	if in.Attachment != nil {
		if in.Attachment.URL == "" || in.Attachment.ContentType == "" || in.Attachment.SizeBytes <= 0 {
			return chat.Message{}, carebridge_errors.ErrInvalidInput
		}
	}

	key := chat.DirectKey(in.SenderID, in.RecipientID)
	if in.GroupID != uuid.Nil {
		key = chat.GroupKey(in.GroupID)
		ok, err := s.groupRepo.IsMember(ctx, in.GroupID, in.SenderID)
		if err != nil {
			return chat.Message{}, err
		}
		if !ok {
			return chat.Message{}, carebridge_errors.ErrForbidden
		}
	}

	if in.ReplyToID != uuid.Nil {
		if err := s.validateReplyTarget(ctx, key, in.ReplyToID); err != nil {
			return chat.Message{}, err
		}
	}

	msg := chat.Message{
		ID:        uuid.New(),
		SenderID:  in.SenderID,
		Body:      nullString(strings.TrimSpace(in.Body)),
		CreatedAt: time.Now(),
	}
	if in.GroupID != uuid.Nil {
		msg.GroupID = uuid.NullUUID{UUID: in.GroupID, Valid: true}
	} else {
		msg.RecipientID = uuid.NullUUID{UUID: in.RecipientID, Valid: true}
	}
	if in.ReplyToID != uuid.Nil {
		msg.ReplyToID = uuid.NullUUID{UUID: in.ReplyToID, Valid: true}
	}

	if in.Upload != nil {
		att, err := s.uploads.Store(ctx, in.SenderID, *in.Upload)
		if err != nil {
			return chat.Message{}, err
		}
		in.Attachment = &att
	}
	if in.Attachment != nil {
		msg.AttachmentURL = nullString(in.Attachment.URL)
		msg.AttachmentMime = nullString(in.Attachment.ContentType)
		msg.AttachmentSize = sql.NullInt64{Int64: in.Attachment.SizeBytes, Valid: true}
		msg.AttachmentName = nullString(in.Attachment.DisplayName)
	}

	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return chat.Message{}, err
	}

	s.publish(ctx, key, events.EventTypeMessageCreated, events.AggregateTypeMessage, msg.ID, msg)
	return msg, nil
}

// DeleteMessage soft-deletes a message. Only the sender may do so; the row
// survives in the store but never appears in list output again.
func (s *ChatService) DeleteMessage(ctx context.Context, callerID, messageID uuid.UUID) error {
	if callerID == uuid.Nil {
		return carebridge_errors.ErrNotAuthenticated
	}
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != callerID {
		return carebridge_errors.ErrForbidden
	}
	if err := s.messageRepo.SoftDelete(ctx, messageID); err != nil {
		return err
	}
	s.publish(ctx, conversationKeyOf(msg), events.EventTypeMessageDeleted, events.AggregateTypeMessage, msg.ID, nil)
	return nil
}

// ToggleReaction flips the caller's reaction on a group message and reports
// the resulting state. The membership flip is atomic in the store; the
// caller's stale snapshot plays no part in the decision.
func (s *ChatService) ToggleReaction(ctx context.Context, callerID, messageID uuid.UUID, kind chat.ReactionKind) (bool, error) {
	if callerID == uuid.Nil {
		return false, carebridge_errors.ErrNotAuthenticated
	}
	if !kind.Valid() {
		return false, carebridge_errors.ErrInvalidInput
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.IsDirect() {
		// reactions are a group chat feature
		return false, carebridge_errors.ErrInvalidInput
	}
	ok, err := s.groupRepo.IsMember(ctx, msg.GroupID.UUID, callerID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, carebridge_errors.ErrForbidden
	}

	added, err := s.reactionRepo.Toggle(ctx, messageID, callerID, kind)
	if err != nil {
		return false, err
	}

	eventType := events.EventTypeReactionRemoved
	if added {
		eventType = events.EventTypeReactionAdded
	}
	s.publish(ctx, chat.GroupKey(msg.GroupID.UUID), eventType, events.AggregateTypeReaction, messageID, map[string]string{
		"message_id": messageID.String(),
		"user_id":    callerID.String(),
		"kind":       string(kind),
	})
	return added, nil
}

// ListReactions is gated the same way as the toggle: the message must be a
// group message and the caller a member of its group.
func (s *ChatService) ListReactions(ctx context.Context, callerID, messageID uuid.UUID) ([]chat.Reaction, error) {
	if callerID == uuid.Nil {
		return nil, carebridge_errors.ErrNotAuthenticated
	}
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsDirect() {
		return nil, carebridge_errors.ErrInvalidInput
	}
	ok, err := s.groupRepo.IsMember(ctx, msg.GroupID.UUID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, carebridge_errors.ErrForbidden
	}
	return s.reactionRepo.ListForMessage(ctx, messageID)
}

// validateReplyTarget ensures the parent message lives in the same
// conversation as the reply being sent.
func (s *ChatService) validateReplyTarget(ctx context.Context, key chat.ConversationKey, parentID uuid.UUID) error {
	parent, err := s.messageRepo.GetByID(ctx, parentID)
	if err != nil {
		if err == carebridge_errors.ErrNotFound {
			return carebridge_errors.ErrInvalidInput
		}
		return err
	}
	if conversationKeyOf(parent).Channel() != key.Channel() {
		return carebridge_errors.ErrInvalidInput
	}
	return nil
}

// publish delivers a change event on the conversation channel. Publish
// failures are logged and swallowed: the write already committed and the
// subscribers' poll interval repairs a missed event.
func (s *ChatService) publish(ctx context.Context, key chat.ConversationKey, eventType, aggregateType string, aggregateID uuid.UUID, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, aggregateType, aggregateID.String(), payload)
	if err != nil {
		if s.log != nil {
			s.log.ErrorCtx(ctx, "marshal event failed",
				zap.String("event_type", eventType), zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, key.Channel(), env); err != nil && s.log != nil {
		s.log.ErrorCtx(ctx, "publish event failed",
			zap.String("event_type", eventType),
			zap.String("channel", key.Channel()),
			zap.Error(err))
	}
}

func conversationKeyOf(m chat.Message) chat.ConversationKey {
	if m.GroupID.Valid {
		return chat.GroupKey(m.GroupID.UUID)
	}
	return chat.DirectKey(m.SenderID, m.RecipientID.UUID)
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
