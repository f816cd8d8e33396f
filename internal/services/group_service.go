package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/domain/group"
	"carebridge-chat/internal/domain/user"
	"carebridge-chat/internal/events"
	"carebridge-chat/internal/repository"
	carebridge_errors "carebridge-chat/pkg/errors"
	"carebridge-chat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroupService manages group channels and membership. Channel create and
// delete are privileged: the caller's role is re-read from the user row
// rather than trusted from the token claim.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
	log       *logger.Logger
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, publisher events.Publisher, log *logger.Logger) *GroupService {
	return &GroupService{groupRepo: groupRepo, userRepo: userRepo, publisher: publisher, log: log}
}

type CreateGroupInput struct {
	Name        string
	Description string
}

func (s *GroupService) Create(ctx context.Context, callerID uuid.UUID, in CreateGroupInput) (group.Channel, error) {
	if callerID == uuid.Nil {
		return group.Channel{}, carebridge_errors.ErrNotAuthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return group.Channel{}, carebridge_errors.ErrInvalidInput
	}
	if err := s.requirePrivileged(ctx, callerID); err != nil {
		return group.Channel{}, err
	}

	ch := group.Channel{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		CreatedBy: callerID,
		CreatedAt: time.Now(),
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		ch.Description = sql.NullString{String: desc, Valid: true}
	}
	if err := s.groupRepo.Create(ctx, &ch); err != nil {
		return group.Channel{}, err
	}

	member := group.Member{GroupID: ch.ID, UserID: callerID, JoinedAt: time.Now()}
	if err := s.groupRepo.AddMember(ctx, &member); err != nil {
		return group.Channel{}, err
	}

	s.publishGroup(ctx, ch.ID, events.EventTypeGroupCreated, events.AggregateTypeGroup, ch)
	return ch, nil
}

func (s *GroupService) Delete(ctx context.Context, callerID, groupID uuid.UUID) error {
	if callerID == uuid.Nil {
		return carebridge_errors.ErrNotAuthenticated
	}
	if err := s.requirePrivileged(ctx, callerID); err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return err
	}
	s.publishGroup(ctx, groupID, events.EventTypeGroupDeleted, events.AggregateTypeGroup, nil)
	return nil
}

func (s *GroupService) List(ctx context.Context) ([]group.Channel, error) {
	return s.groupRepo.List(ctx)
}

func (s *GroupService) Get(ctx context.Context, groupID uuid.UUID) (group.Channel, error) {
	return s.groupRepo.GetByID(ctx, groupID)
}

func (s *GroupService) AddMember(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	if callerID == uuid.Nil {
		return carebridge_errors.ErrNotAuthenticated
	}
	if err := s.requirePrivileged(ctx, callerID); err != nil {
		return err
	}
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return err
	}
	member := group.Member{
		GroupID:  groupID,
		UserID:   userID,
		AddedBy:  uuid.NullUUID{UUID: callerID, Valid: true},
		JoinedAt: time.Now(),
	}
	if err := s.groupRepo.AddMember(ctx, &member); err != nil {
		return err
	}
	s.publishGroup(ctx, groupID, events.EventTypeMemberAdded, events.AggregateTypeMember, member)
	return nil
}

func (s *GroupService) RemoveMember(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	if callerID == uuid.Nil {
		return carebridge_errors.ErrNotAuthenticated
	}
	// members may leave on their own; removing someone else is privileged
	if callerID != userID {
		if err := s.requirePrivileged(ctx, callerID); err != nil {
			return err
		}
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.publishGroup(ctx, groupID, events.EventTypeMemberRemoved, events.AggregateTypeMember, map[string]string{
		"group_id": groupID.String(),
		"user_id":  userID.String(),
	})
	return nil
}

func (s *GroupService) ListMembers(ctx context.Context, callerID, groupID uuid.UUID) ([]group.Member, error) {
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
	return s.groupRepo.ListMembers(ctx, groupID)
}

func (s *GroupService) requirePrivileged(ctx context.Context, callerID uuid.UUID) error {
	u, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if u.Role != user.RoleNGO && u.Role != user.RoleAdmin {
		return carebridge_errors.ErrForbidden
	}
	return nil
}

func (s *GroupService) publishGroup(ctx context.Context, groupID uuid.UUID, eventType, aggregateType string, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, aggregateType, groupID.String(), payload)
	if err != nil {
		if s.log != nil {
			s.log.ErrorCtx(ctx, "marshal event failed",
				zap.String("event_type", eventType), zap.Error(err))
		}
		return
	}
	channel := chat.GroupKey(groupID).Channel()
	if err := s.publisher.Publish(ctx, channel, env); err != nil && s.log != nil {
		s.log.ErrorCtx(ctx, "publish event failed",
			zap.String("event_type", eventType),
			zap.String("channel", channel),
			zap.Error(err))
	}
}
