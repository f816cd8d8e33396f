package events

// Event type constants, format: domain.action

// Message events
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageDeleted = "message.deleted"
)

// Reaction events
const (
	EventTypeReactionAdded   = "reaction.added"
	EventTypeReactionRemoved = "reaction.removed"
)

// Group channel events
const (
	EventTypeGroupCreated  = "group.created"
	EventTypeGroupDeleted  = "group.deleted"
	EventTypeMemberAdded   = "member.added"
	EventTypeMemberRemoved = "member.removed"
)

// Aggregate type constants
const (
	AggregateTypeMessage  = "message"
	AggregateTypeReaction = "reaction"
	AggregateTypeGroup    = "group"
	AggregateTypeMember   = "member"
)

// Redis channel prefixes
const (
	ChannelPrefixDirect = "channel:direct:"
	ChannelPrefixGroup  = "channel:group:"
	ChannelPatternAll   = "channel:*"
)
