package repository

import (
	"context"

	"github.com/oduya/pendo/internal/db"

	"gorm.io/gorm"
)

// UserRepository provides the few user lookups the services need.
// There are no auth endpoints; users come from seeding or externally.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Exists reports whether a user row with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
