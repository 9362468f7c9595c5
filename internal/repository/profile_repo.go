package repository

import (
	"context"
	"errors"

	"github.com/oduya/pendo/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Upsert saves a profile keyed on its owning user.
//
// Behavior:
//   - If a row for user_id exists → its user-editable columns are replaced.
//   - If it doesn't exist → a new row is inserted.
//   - Exactly one live profile per user is guaranteed by the unique index
//     on user_id plus the conflict clause, not by a uniqueness error.
//   - is_admin and is_fake_profile are never touched by an upsert.
//
// Returns the stored row (id and timestamps are server-assigned).
func (r *ProfileRepository) Upsert(ctx context.Context, profile *db.Profile) (*db.Profile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "age", "gender", "seeking_gender",
				"location", "bio", "interests",
				"profile_picture_url", "intro_video_url", "updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		return nil, err
	}
	// On conflict the inserted id is discarded; read back the live row.
	return r.GetByUserID(ctx, profile.UserID)
}

// GetByUserID returns the profile owned by userID, or gorm.ErrRecordNotFound.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByID returns a profile by primary key, or gorm.ErrRecordNotFound.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindCandidates returns discovery candidates for a caller.
//
// Behavior:
//   - Filters strictly by gender = seekingGender.
//   - Excludes the caller's own profile.
//   - Size-capped, unordered beyond insertion order; no cursor and no
//     exclusion of already-matched candidates.
func (r *ProfileRepository) FindCandidates(
	ctx context.Context,
	seekingGender, excludeUserID string,
	limit int,
) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("gender = ? AND user_id <> ?", seekingGender, excludeUserID).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// IsAdmin reports whether the user's profile carries admin privileges.
// A missing profile is simply not admin.
func (r *ProfileRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.IsAdmin, nil
}

// CountReal counts non-seed profiles.
func (r *ProfileRepository) CountReal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("is_fake_profile = ?", false).
		Count(&count).Error
	return count, err
}

// ListReal returns non-seed profiles, newest first.
func (r *ProfileRepository) ListReal(ctx context.Context) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("is_fake_profile = ?", false).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}
