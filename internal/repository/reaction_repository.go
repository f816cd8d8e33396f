package repository

import (
	"context"
	"time"

	"carebridge-chat/internal/domain/chat"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// Toggle flips membership of (messageID, userID, kind) in a single
// transaction. The insert carries ON CONFLICT DO NOTHING against the natural
// key's unique index; zero rows affected means the reaction already existed,
// so it is deleted by the same key. Two concurrent toggles can therefore
// never leave two rows behind, and the caller gets the resulting state back
// instead of trusting whatever snapshot it last fetched.
func (r *PostgresReactionRepository) Toggle(ctx context.Context, messageID, userID uuid.UUID, kind chat.ReactionKind) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reaction := chat.Reaction{
			ID:        uuid.New(),
			MessageID: messageID,
			UserID:    userID,
			Kind:      kind,
			CreatedAt: time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}, {Name: "kind"}},
			DoNothing: true,
		}).Create(&reaction)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = true
			return nil
		}
		return tx.
			Delete(&chat.Reaction{}, "message_id = ? AND user_id = ? AND kind = ?", messageID, userID, kind).
			Error
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *PostgresReactionRepository) ListForMessage(ctx context.Context, messageID uuid.UUID) ([]chat.Reaction, error) {
	var reactions []chat.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}
