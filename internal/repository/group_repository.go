package repository

import (
	"context"
	"errors"

	"carebridge-chat/internal/domain/group"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Create(ctx context.Context, ch *group.Channel) error {
	res := r.db.WithContext(ctx).Create(ch)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return carebridge_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (group.Channel, error) {
	var ch group.Channel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group.Channel{}, carebridge_errors.ErrNotFound
		}
		return group.Channel{}, err
	}
	return ch, nil
}

func (r *PostgresGroupRepository) List(ctx context.Context) ([]group.Channel, error) {
	var channels []group.Channel
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *PostgresGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&group.Channel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return carebridge_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, m *group.Member) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return carebridge_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&group.Member{}, "group_id = ? AND user_id = ?", groupID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return carebridge_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&group.Member{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]group.Member, error) {
	var members []group.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
