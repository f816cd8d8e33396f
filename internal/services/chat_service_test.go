package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/domain/group"
	"carebridge-chat/internal/events"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc       *ChatService
	messages  *fakeMessageRepo
	reactions *fakeReactionRepo
	groups    *fakeGroupRepo
	uploader  *fakeUploader
	publisher *fakePublisher
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		messages:  newFakeMessageRepo(),
		reactions: newFakeReactionRepo(),
		groups:    newFakeGroupRepo(),
		uploader:  &fakeUploader{},
		publisher: &fakePublisher{},
	}
	f.svc = NewChatService(f.messages, f.reactions, f.groups, f.uploader, f.publisher, nil)
	return f
}

func (f *chatFixture) seedGroup(t *testing.T, members ...uuid.UUID) uuid.UUID {
	t.Helper()
	ch := group.Channel{ID: uuid.New(), Name: "circle", CreatedBy: members[0], CreatedAt: time.Now()}
	require.NoError(t, f.groups.Create(context.Background(), &ch))
	for _, id := range members {
		m := group.Member{GroupID: ch.ID, UserID: id, JoinedAt: time.Now()}
		require.NoError(t, f.groups.AddMember(context.Background(), &m))
	}
	return ch.ID
}

func TestSendDirectMessageAndList(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	sent, err := f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    alice,
		RecipientID: bob,
		Body:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, alice, sent.SenderID)
	assert.Equal(t, "hello", sent.Body.String)

	// Both participants see the same single message.
	for _, pair := range [][2]uuid.UUID{{alice, bob}, {bob, alice}} {
		list, err := f.svc.ListDirect(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, sent.ID, list[0].ID)
		assert.Equal(t, alice, list[0].SenderID)
	}

	assert.Equal(t, []string{events.EventTypeMessageCreated}, f.publisher.eventTypes())
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := f.svc.SendMessage(ctx, SendMessageInput{RecipientID: bob, Body: "hi"})
	assert.ErrorIs(t, err, carebridge_errors.ErrNotAuthenticated)

	// Neither or both targets set is rejected.
	_, err = f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, Body: "hi"})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)
	_, err = f.svc.SendMessage(ctx, SendMessageInput{
		SenderID: alice, RecipientID: bob, GroupID: uuid.New(), Body: "hi",
	})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	_, err = f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, RecipientID: bob, Body: "   "})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	assert.Zero(t, f.messages.count())
}

func TestSendGroupMessageRequiresMembership(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	member, outsider := uuid.New(), uuid.New()
	groupID := f.seedGroup(t, member)

	_, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: outsider, GroupID: groupID, Body: "hi"})
	assert.ErrorIs(t, err, carebridge_errors.ErrForbidden)

	_, err = f.svc.SendMessage(ctx, SendMessageInput{SenderID: member, GroupID: groupID, Body: "hi"})
	require.NoError(t, err)
}

func TestListDirectOrdersByCreatedAt(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	base := time.Now().Add(-time.Hour)
	// Insert out of order; list output must still be ascending.
	for _, offset := range []time.Duration{30 * time.Minute, 5 * time.Minute, 50 * time.Minute, 10 * time.Minute} {
		m := chat.Message{
			ID:          uuid.New(),
			SenderID:    alice,
			RecipientID: uuid.NullUUID{UUID: bob, Valid: true},
			Body:        sql.NullString{String: offset.String(), Valid: true},
			CreatedAt:   base.Add(offset),
		}
		require.NoError(t, f.messages.Create(ctx, &m))
	}

	list, err := f.svc.ListDirect(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt),
			"messages must be ordered oldest first")
	}
}

func TestDeleteMessageSoftDeletes(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	sent, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, RecipientID: bob, Body: "oops"})
	require.NoError(t, err)

	// Only the sender may delete.
	err = f.svc.DeleteMessage(ctx, bob, sent.ID)
	assert.ErrorIs(t, err, carebridge_errors.ErrForbidden)

	require.NoError(t, f.svc.DeleteMessage(ctx, alice, sent.ID))

	list, err := f.svc.ListDirect(ctx, alice, bob)
	require.NoError(t, err)
	assert.Empty(t, list, "deleted messages must not appear in list output")

	// The row survives in the store.
	stored, err := f.messages.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.True(t, stored.DeletedAt.Valid)

	assert.Contains(t, f.publisher.eventTypes(), events.EventTypeMessageDeleted)
}

func TestReplyStaysInConversation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	parent, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, RecipientID: bob, Body: "how are you?"})
	require.NoError(t, err)

	reply, err := f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    bob,
		RecipientID: alice,
		Body:        "fine, thanks",
		ReplyToID:   parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, reply.ReplyToID.UUID)

	// Replying from an unrelated conversation to the same parent is rejected.
	_, err = f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    carol,
		RecipientID: alice,
		Body:        "me too",
		ReplyToID:   parent.ID,
	})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	// A reply to a message that does not exist is rejected.
	_, err = f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    bob,
		RecipientID: alice,
		Body:        "???",
		ReplyToID:   uuid.New(),
	})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)
}

func TestUploadFailureAbortsSend(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	f.uploader.err = carebridge_errors.ErrNotUploaded
	_, err := f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    alice,
		RecipientID: bob,
		Body:        "scan attached",
		Upload: &UploadInput{
			FileName:    "scan.pdf",
			ContentType: "application/pdf",
			SizeBytes:   1024,
			Body:        strings.NewReader("pdfdata"),
		},
	})
	assert.ErrorIs(t, err, carebridge_errors.ErrNotUploaded)
	assert.Zero(t, f.messages.count(), "a message must never exist without its attachment")
	assert.Empty(t, f.publisher.eventTypes())
}

func TestSendMessageWithAttachment(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	sent, err := f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    alice,
		RecipientID: bob,
		Upload: &UploadInput{
			FileName:    "photo.jpg",
			ContentType: "image/jpeg",
			SizeBytes:   2048,
			Body:        strings.NewReader("jpegdata"),
		},
	})
	require.NoError(t, err)
	assert.True(t, sent.AttachmentURL.Valid)
	assert.Equal(t, "image/jpeg", sent.AttachmentMime.String)
	assert.Equal(t, int64(2048), sent.AttachmentSize.Int64)
	assert.False(t, sent.Body.Valid, "attachment-only messages carry no body")
}

func TestSendMessageWithAttachmentDescriptor(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	att := chat.Attachment{
		URL:         "https://files.example.com/scan.pdf",
		ContentType: "application/pdf",
		SizeBytes:   4096,
		DisplayName: "scan.pdf",
	}
	sent, err := f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    alice,
		RecipientID: bob,
		Attachment:  &att,
	})
	require.NoError(t, err)
	assert.Equal(t, att.URL, sent.AttachmentURL.String)
	assert.Equal(t, att.ContentType, sent.AttachmentMime.String)
	assert.Equal(t, att.SizeBytes, sent.AttachmentSize.Int64)
	assert.Empty(t, f.uploader.stored, "descriptor sends must not re-upload")

	// Incomplete descriptors are rejected.
	for _, bad := range []chat.Attachment{
		{ContentType: "application/pdf", SizeBytes: 1},
		{URL: "https://files.example.com/x", SizeBytes: 1},
		{URL: "https://files.example.com/x", ContentType: "application/pdf"},
	} {
		bad := bad
		_, err := f.svc.SendMessage(ctx, SendMessageInput{
			SenderID: alice, RecipientID: bob, Attachment: &bad,
		})
		assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)
	}

	// A staged file and a descriptor on the same send is ambiguous.
	_, err = f.svc.SendMessage(ctx, SendMessageInput{
		SenderID:    alice,
		RecipientID: bob,
		Attachment:  &att,
		Upload:      &UploadInput{FileName: "x", ContentType: "text/plain", SizeBytes: 1, Body: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)
}

func TestToggleReaction(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	groupID := f.seedGroup(t, alice, bob)

	msg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, GroupID: groupID, Body: "good news"})
	require.NoError(t, err)

	active, err := f.svc.ToggleReaction(ctx, bob, msg.ID, chat.ReactionHeart)
	require.NoError(t, err)
	assert.True(t, active)

	list, err := f.svc.ListReactions(ctx, alice, msg.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob, list[0].UserID)
	assert.Equal(t, chat.ReactionHeart, list[0].Kind)

	// Second toggle removes it, landing back where we started.
	active, err = f.svc.ToggleReaction(ctx, bob, msg.ID, chat.ReactionHeart)
	require.NoError(t, err)
	assert.False(t, active)

	list, err = f.svc.ListReactions(ctx, alice, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, []string{
		events.EventTypeMessageCreated,
		events.EventTypeReactionAdded,
		events.EventTypeReactionRemoved,
	}, f.publisher.eventTypes())
}

func TestToggleReactionRejections(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob, outsider := uuid.New(), uuid.New(), uuid.New()
	groupID := f.seedGroup(t, alice, bob)

	groupMsg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, GroupID: groupID, Body: "hi"})
	require.NoError(t, err)
	directMsg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, RecipientID: bob, Body: "hi"})
	require.NoError(t, err)

	_, err = f.svc.ToggleReaction(ctx, uuid.Nil, groupMsg.ID, chat.ReactionLike)
	assert.ErrorIs(t, err, carebridge_errors.ErrNotAuthenticated)

	_, err = f.svc.ToggleReaction(ctx, bob, groupMsg.ID, chat.ReactionKind("CLAP"))
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	_, err = f.svc.ToggleReaction(ctx, bob, directMsg.ID, chat.ReactionLike)
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	_, err = f.svc.ToggleReaction(ctx, outsider, groupMsg.ID, chat.ReactionLike)
	assert.ErrorIs(t, err, carebridge_errors.ErrForbidden)

	_, err = f.svc.ToggleReaction(ctx, bob, uuid.New(), chat.ReactionLike)
	assert.ErrorIs(t, err, carebridge_errors.ErrNotFound)
}

func TestListReactionsRequiresMembership(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob, outsider := uuid.New(), uuid.New(), uuid.New()
	groupID := f.seedGroup(t, alice, bob)

	groupMsg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, GroupID: groupID, Body: "hi"})
	require.NoError(t, err)
	directMsg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, RecipientID: bob, Body: "hi"})
	require.NoError(t, err)

	_, err = f.svc.ListReactions(ctx, uuid.Nil, groupMsg.ID)
	assert.ErrorIs(t, err, carebridge_errors.ErrNotAuthenticated)

	_, err = f.svc.ListReactions(ctx, outsider, groupMsg.ID)
	assert.ErrorIs(t, err, carebridge_errors.ErrForbidden)

	_, err = f.svc.ListReactions(ctx, bob, directMsg.ID)
	assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput)

	_, err = f.svc.ListReactions(ctx, bob, uuid.New())
	assert.ErrorIs(t, err, carebridge_errors.ErrNotFound)

	_, err = f.svc.ListReactions(ctx, bob, groupMsg.ID)
	require.NoError(t, err)
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	groupID := f.seedGroup(t, alice, bob)

	msg, err := f.svc.SendMessage(ctx, SendMessageInput{SenderID: alice, GroupID: groupID, Body: "race me"})
	require.NoError(t, err)

	const toggles = 10
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ToggleReaction(ctx, bob, msg.ID, chat.ReactionLike)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of toggles always lands on absent, never on two rows.
	list, err := f.svc.ListReactions(ctx, alice, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListGroupRequiresMembership(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	member, outsider := uuid.New(), uuid.New()
	groupID := f.seedGroup(t, member)

	_, err := f.svc.ListGroup(ctx, outsider, groupID)
	assert.ErrorIs(t, err, carebridge_errors.ErrForbidden)

	_, err = f.svc.ListGroup(ctx, member, groupID)
	require.NoError(t, err)
}
