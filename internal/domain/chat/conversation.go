package chat

import (
	"github.com/google/uuid"
)

// ConversationKey addresses the scope of a message sequence: an unordered
// pair of users, or a group channel. Direct conversations are implicit and
// never materialized as rows; the key is only a filter.
type ConversationKey struct {
	UserA   uuid.UUID
	UserB   uuid.UUID
	GroupID uuid.UUID
}

func DirectKey(a, b uuid.UUID) ConversationKey {
	return ConversationKey{UserA: a, UserB: b}
}

func GroupKey(groupID uuid.UUID) ConversationKey {
	return ConversationKey{GroupID: groupID}
}

func (k ConversationKey) IsGroup() bool {
	return k.GroupID != uuid.Nil
}

// Channel returns the event channel name for the conversation. Direct pairs
// sort their ids so both participants resolve the same channel.
func (k ConversationKey) Channel() string {
	if k.IsGroup() {
		return "channel:group:" + k.GroupID.String()
	}
	lo, hi := k.UserA, k.UserB
	if hi.String() < lo.String() {
		lo, hi = hi, lo
	}
	return "channel:direct:" + lo.String() + ":" + hi.String()
}
