package match

import (
	"context"
	"errors"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/repository"

	"gorm.io/gorm"
)

const defaultListLimit = 20

// Service implements the match API. A match is one-directional: it
// records the caller's interest and makes the conversation visible to
// them, with no reciprocity check.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	profileRepo *repository.ProfileRepository
}

// NewMatchService creates a new Match service with dependencies from AppContext.
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// RecordInterest creates a match from the caller to a candidate profile.
//
// Behavior:
//   - The candidate must exist and must not be the caller's own profile.
//   - The candidate's gender must equal the caller's seeking_gender;
//     anything else reads as a missing candidate.
//   - A repeated like is a no-op returning the existing match
//     (created = false).
func (s *Service) RecordInterest(ctx context.Context, userID, profileID string) (*db.Match, bool, error) {
	s.appCtx.Logger.Debug("record interest called", "user_id", userID, "profile_id", profileID)

	candidate, err := s.profileRepo.GetByID(ctx, profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, svcErr.NotFound("profile not found")
	}
	if err != nil {
		return nil, false, err
	}

	if candidate.UserID == userID {
		return nil, false, svcErr.InvalidArgument("cannot match with your own profile")
	}

	own, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, svcErr.NotFound("create a profile before matching")
	}
	if err != nil {
		return nil, false, err
	}

	if candidate.Gender != own.SeekingGender {
		return nil, false, svcErr.NotFound("profile not found")
	}

	m, created, err := s.matchRepo.Create(ctx, userID, profileID)
	if err != nil {
		s.appCtx.Logger.Error("create match failed", "user_id", userID, "profile_id", profileID, "err", err)
		return nil, false, err
	}

	s.appCtx.Logger.Debug("record interest result", "match_id", m.ID, "created", created)
	return m, created, nil
}

// List returns the caller's matches, newest first, with the liked
// profile preloaded. Supports cursor-based pagination.
func (s *Service) List(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	matches, nextToken, err := s.matchRepo.ListByUser(ctx, userID, paginationToken, limit)
	if err != nil {
		s.appCtx.Logger.Error("list matches failed", "user_id", userID, "err", err)
		return nil, nil, err
	}
	return matches, nextToken, nil
}
