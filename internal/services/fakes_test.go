package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/domain/group"
	"carebridge-chat/internal/domain/user"
	"carebridge-chat/internal/events"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository doubles mirroring the Postgres semantics the services
// rely on: not-found sentinels, soft-delete filtering, ascending order and
// the atomic reaction toggle.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]chat.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]chat.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return chat.Message{}, carebridge_errors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListDirect(ctx context.Context, a, b uuid.UUID) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Message
	for _, m := range r.messages {
		if m.DeletedAt.Valid || !m.RecipientID.Valid {
			continue
		}
		pair := (m.SenderID == a && m.RecipientID.UUID == b) ||
			(m.SenderID == b && m.RecipientID.UUID == a)
		if pair {
			out = append(out, m)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *fakeMessageRepo) ListGroup(ctx context.Context, groupID uuid.UUID) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Message
	for _, m := range r.messages {
		if m.DeletedAt.Valid {
			continue
		}
		if m.GroupID.Valid && m.GroupID.UUID == groupID {
			out = append(out, m)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *fakeMessageRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok || m.DeletedAt.Valid {
		return carebridge_errors.ErrNotFound
	}
	m.DeletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.messages[id] = m
	return nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func sortByCreatedAt(list []chat.Message) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

type reactionKey struct {
	messageID uuid.UUID
	userID    uuid.UUID
	kind      chat.ReactionKind
}

type fakeReactionRepo struct {
	mu        sync.Mutex
	reactions map[reactionKey]chat.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[reactionKey]chat.Reaction)}
}

// Toggle holds the lock across the membership check and the flip, matching
// the single-statement upsert-or-delete in the Postgres implementation.
func (r *fakeReactionRepo) Toggle(ctx context.Context, messageID, userID uuid.UUID, kind chat.ReactionKind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reactionKey{messageID: messageID, userID: userID, kind: kind}
	if _, ok := r.reactions[key]; ok {
		delete(r.reactions, key)
		return false, nil
	}
	r.reactions[key] = chat.Reaction{
		ID:        uuid.New(),
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (r *fakeReactionRepo) ListForMessage(ctx context.Context, messageID uuid.UUID) ([]chat.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Reaction
	for _, reaction := range r.reactions {
		if reaction.MessageID == messageID {
			out = append(out, reaction)
		}
	}
	return out, nil
}

type memberKey struct {
	groupID uuid.UUID
	userID  uuid.UUID
}

type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  map[uuid.UUID]group.Channel
	members map[memberKey]group.Member
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[uuid.UUID]group.Channel),
		members: make(map[memberKey]group.Member),
	}
}

func (r *fakeGroupRepo) Create(ctx context.Context, ch *group.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[ch.ID] = *ch
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id uuid.UUID) (group.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.groups[id]
	if !ok {
		return group.Channel{}, carebridge_errors.ErrNotFound
	}
	return ch, nil
}

func (r *fakeGroupRepo) List(ctx context.Context) ([]group.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]group.Channel, 0, len(r.groups))
	for _, ch := range r.groups {
		out = append(out, ch)
	}
	return out, nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return carebridge_errors.ErrNotFound
	}
	delete(r.groups, id)
	for key := range r.members {
		if key.groupID == id {
			delete(r.members, key)
		}
	}
	return nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, m *group.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{groupID: m.GroupID, userID: m.UserID}
	if _, ok := r.members[key]; ok {
		return carebridge_errors.ErrAlreadyExists
	}
	r.members[key] = *m
	return nil
}

func (r *fakeGroupRepo) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{groupID: groupID, userID: userID}
	if _, ok := r.members[key]; !ok {
		return carebridge_errors.ErrNotFound
	}
	delete(r.members, key)
	return nil
}

func (r *fakeGroupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[memberKey{groupID: groupID, userID: userID}]
	return ok, nil
}

func (r *fakeGroupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]group.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []group.Member
	for key, m := range r.members {
		if key.groupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]user.User
	sessions map[uuid.UUID]user.Session
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]user.User),
		sessions: make(map[uuid.UUID]user.Session),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return carebridge_errors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, carebridge_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, carebridge_errors.ErrNotFound
}

func (r *fakeUserRepo) CreateSession(ctx context.Context, s *user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeUserRepo) GetSession(ctx context.Context, id uuid.UUID) (user.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return user.Session{}, carebridge_errors.ErrNotFound
	}
	return s, nil
}

func (r *fakeUserRepo) UpdateSession(ctx context.Context, s user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return carebridge_errors.ErrNotFound
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeUserRepo) RevokeSession(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return carebridge_errors.ErrNotFound
	}
	s.RevokedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.sessions[id] = s
	return nil
}

// fakeUploader stands in for the S3-backed service; err, when set, simulates
// a storage outage.
type fakeUploader struct {
	mu     sync.Mutex
	err    error
	stored []UploadInput
}

func (u *fakeUploader) Store(ctx context.Context, uploaderID uuid.UUID, in UploadInput) (chat.Attachment, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return chat.Attachment{}, u.err
	}
	u.stored = append(u.stored, in)
	return chat.Attachment{
		URL:         "https://files.example.com/" + in.FileName,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		DisplayName: in.FileName,
	}, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	channel string
	env     events.Envelope
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{channel: channel, env: env})
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.env.EventType)
	}
	return out
}
