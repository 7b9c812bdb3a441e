package repository

import (
	"context"
	"errors"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages and likes.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	// Timeline returns the newest messages authored by any of the given
	// users, newest first, capped at limit.
	Timeline(ctx context.Context, authorIDs []uint, limit int, currentUserID uint) ([]*models.Message, error)
	ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error)
	// ToggleLike flips the (user, message) like edge and reports the
	// resulting state: true if the message is now liked.
	ToggleLike(ctx context.Context, userID, messageID uint) (bool, error)
	IsLiked(ctx context.Context, userID, messageID uint) (bool, error)
	LikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}

	msgs := []*models.Message{&message}
	if err := r.attachLikeMeta(ctx, msgs, currentUserID); err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Timeline(ctx context.Context, authorIDs []uint, limit int, currentUserID uint) ([]*models.Message, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikeMeta(ctx, messages, currentUserID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikeMeta(ctx, messages, currentUserID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND message_id = ?", userID, messageID).
			First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, MessageID: messageID}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

func (r *messageRepository) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *messageRepository) LikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes l ON l.message_id = messages.id").
		Where("l.user_id = ?", userID).
		Order("l.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikeMeta(ctx, messages, userID); err != nil {
		return nil, err
	}
	return messages, nil
}

// likeCount is the scan target for the grouped like-count query.
type likeCount struct {
	MessageID uint
	N         int
}

// attachLikeMeta fills the computed LikesCount and Liked fields with two
// grouped queries instead of one per message.
func (r *messageRepository) attachLikeMeta(ctx context.Context, messages []*models.Message, currentUserID uint) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	var counts []likeCount
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("message_id, count(*) as n").
		Where("message_id IN ?", ids).
		Group("message_id").
		Scan(&counts).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	byID := make(map[uint]int, len(counts))
	for _, c := range counts {
		byID[c.MessageID] = c.N
	}

	likedSet := make(map[uint]bool)
	if currentUserID != 0 {
		var likedIDs []uint
		err := r.db.WithContext(ctx).
			Model(&models.Like{}).
			Where("user_id = ? AND message_id IN ?", currentUserID, ids).
			Pluck("message_id", &likedIDs).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range likedIDs {
			likedSet[id] = true
		}
	}

	for _, m := range messages {
		m.LikesCount = byID[m.ID]
		m.Liked = likedSet[m.ID]
	}
	return nil
}
