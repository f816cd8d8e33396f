package websocket

import (
	"context"
	"strings"

	"carebridge-chat/internal/events"
	"carebridge-chat/internal/repository"

	"github.com/google/uuid"
)

// ChannelAuthorizer decides whether a user may subscribe to a change-event
// channel. Direct channels require the user's own id in the pair; group
// channels require membership.
type ChannelAuthorizer struct {
	groupRepo repository.GroupRepository
}

func NewChannelAuthorizer(groupRepo repository.GroupRepository) *ChannelAuthorizer {
	return &ChannelAuthorizer{groupRepo: groupRepo}
}

func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID string, channel string) (bool, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	if strings.HasPrefix(channel, events.ChannelPrefixDirect) {
		rest := strings.TrimPrefix(channel, events.ChannelPrefixDirect)
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return false, nil
		}
		return parts[0] == userID || parts[1] == userID, nil
	}

	if strings.HasPrefix(channel, events.ChannelPrefixGroup) {
		groupIDStr := strings.TrimPrefix(channel, events.ChannelPrefixGroup)
		groupID, err := uuid.Parse(groupIDStr)
		if err != nil {
			return false, nil
		}
		return a.groupRepo.IsMember(ctx, groupID, userUUID)
	}

	// Default deny
	return false, nil
}
