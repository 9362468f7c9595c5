package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultDiscoverLimit = 10
	maxDiscoverLimit     = 50
)

// UpsertInput carries the user-editable profile attributes.
type UpsertInput struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	SeekingGender     string   `json:"seeking_gender"`
	Location          string   `json:"location"`
	Bio               string   `json:"bio"`
	Interests         []string `json:"interests"`
	ProfilePictureURL string   `json:"profile_picture_url"`
	IntroVideoURL     string   `json:"intro_video_url"`
}

// Service implements the profile API: saving the caller's own profile
// and candidate discovery.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
}

// NewProfileService creates a new Profile service with dependencies from AppContext.
func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// Upsert saves the caller's profile, replacing any previous one.
//
// Behavior:
//   - Full-record upsert keyed on the owning user; at most one live
//     profile per user.
//   - Validates name, age (18+) and the gender fields.
//   - Never touches is_admin / is_fake_profile.
func (s *Service) Upsert(ctx context.Context, userID string, in UpsertInput) (*db.Profile, error) {
	s.appCtx.Logger.Debug("profile upsert called", "user_id", userID)

	if err := validate(in); err != nil {
		s.appCtx.Logger.Error("profile validation failed", "user_id", userID, "err", err)
		return nil, err
	}

	profile := &db.Profile{
		UserID:            userID,
		Name:              strings.TrimSpace(in.Name),
		Age:               in.Age,
		Gender:            in.Gender,
		SeekingGender:     in.SeekingGender,
		Location:          strings.TrimSpace(in.Location),
		Bio:               strings.TrimSpace(in.Bio),
		Interests:         in.Interests,
		ProfilePictureURL: in.ProfilePictureURL,
		IntroVideoURL:     in.IntroVideoURL,
	}

	stored, err := s.profileRepo.Upsert(ctx, profile)
	if err != nil {
		s.appCtx.Logger.Error("profile upsert failed", "user_id", userID, "err", err)
		return nil, err
	}
	return stored, nil
}

// Get returns the caller's own profile.
func (s *Service) Get(ctx context.Context, userID string) (*db.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("profile not found")
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Discover returns candidate profiles for the caller.
//
// Behavior:
//   - Candidates whose gender equals the caller's seeking_gender.
//   - Excludes the caller's own profile.
//   - Size-capped result set, no pagination cursor, and no exclusion of
//     already-matched candidates.
func (s *Service) Discover(ctx context.Context, userID string, limit int) ([]db.Profile, error) {
	s.appCtx.Logger.Debug("discover called", "user_id", userID, "limit", limit)

	if limit <= 0 {
		limit = defaultDiscoverLimit
	}
	if limit > maxDiscoverLimit {
		limit = maxDiscoverLimit
	}

	own, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("create a profile before discovering")
	}
	if err != nil {
		return nil, err
	}

	candidates, err := s.profileRepo.FindCandidates(ctx, own.SeekingGender, userID, limit)
	if err != nil {
		s.appCtx.Logger.Error("find candidates failed", "user_id", userID, "err", err)
		return nil, err
	}

	s.appCtx.Logger.Debug("discover result", "user_id", userID, "count", len(candidates))
	return candidates, nil
}

func validate(in UpsertInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return svcErr.InvalidArgument("name must not be empty")
	}
	if in.Age < 18 {
		return svcErr.InvalidArgument("age must be 18 or older")
	}
	if !validGender(in.Gender) {
		return svcErr.InvalidArgument("gender must be male or female")
	}
	if !validGender(in.SeekingGender) {
		return svcErr.InvalidArgument("seeking_gender must be male or female")
	}
	return nil
}

func validGender(g string) bool {
	return g == "male" || g == "female"
}
