package repository

import (
	"context"
	"time"

	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access methods for the Match model.
// A match is one-directional: it belongs to the user who liked.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create inserts a match for (userID, matchedProfileID).
//
// Behavior:
//   - The unique index on the pair plus OnConflict DoNothing makes a
//     repeated like a no-op; the existing row is returned instead.
//   - created reports whether a new row was actually inserted.
//
// Example:
//
//	repo.Create(ctx, "u-1", "p-2") // user u-1 liked profile p-2
func (r *MatchRepository) Create(
	ctx context.Context,
	userID, matchedProfileID string,
) (*db.Match, bool, error) {
	match := db.Match{
		UserID:           userID,
		MatchedProfileID: matchedProfileID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "matched_profile_id"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.getByPair(ctx, userID, matchedProfileID)
		return existing, false, err
	}
	return &match, true, nil
}

// GetOwned returns a match by id only if it belongs to userID.
// A match owned by someone else reads as gorm.ErrRecordNotFound, so
// foreign conversations are indistinguishable from missing ones.
func (r *MatchRepository) GetOwned(ctx context.Context, id, userID string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetByID returns a match by primary key regardless of owner.
// Used by operator replies, which may post into any conversation.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListByUser returns the user's matches, newest first, with the liked
// profile preloaded.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *MatchRepository) ListByUser(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	var matches []db.Match

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.InvalidArgument("invalid pagination token")
	}

	query := r.db.WithContext(ctx).
		Preload("Profile").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.ID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// CountByUser returns how many matches a user has created.
func (r *MatchRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *MatchRepository) getByPair(ctx context.Context, userID, matchedProfileID string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND matched_profile_id = ?", userID, matchedProfileID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
