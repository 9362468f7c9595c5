package repository

import (
	"context"

	"github.com/oduya/pendo/internal/db"

	"gorm.io/gorm"
)

// MessageRepository provides data access methods for the Message model.
// Messages are append-only; there is no update or delete path.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB
// connection. Bind it to a transaction handle to make an insert part of
// a larger unit of work.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Insert appends a message to its match scope.
func (r *MessageRepository) Insert(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByMatch returns the full conversation for a match, ascending by
// creation time (id breaks ties). Restartable: each call re-reads from
// the start of the scope.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Count returns the total number of messages across all matches.
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Count(&count).Error
	return count, err
}

// CountBySender returns how many messages a user has sent.
func (r *MessageRepository) CountBySender(ctx context.Context, senderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ?", senderID).
		Count(&count).Error
	return count, err
}
