package admin

import (
	"context"
	"time"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/repository"

	"gorm.io/gorm"
)

// Stats is the dashboard headline block.
type Stats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalMessages int64   `json:"total_messages"`
	TotalCredits  int64   `json:"total_credits"`
	Revenue       float64 `json:"revenue"`
}

// UserStats is one dashboard row: a real profile with its ledger and
// activity counters.
type UserStats struct {
	ProfileID string    `json:"profile_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Credits   int64     `json:"credits"`
	Matches   int64     `json:"matches"`
	Messages  int64     `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Service implements the admin API: dashboard stats and credit top-ups.
// Every operation requires the caller's profile to carry is_admin.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
	creditRepo  *repository.CreditRepository
	txnRepo     *repository.TransactionRepository
	userRepo    *repository.UserRepository
}

// NewAdminService creates a new Admin service with dependencies from AppContext.
func NewAdminService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		creditRepo:  repository.NewCreditRepository(appCtx.DB),
		txnRepo:     repository.NewTransactionRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
	}
}

// TopUp grants credits to a user and records a completed transaction,
// in one unit of work. The ledger row is created on first grant.
func (s *Service) TopUp(ctx context.Context, adminID, userID string, amount int64) (*db.Credit, error) {
	s.appCtx.Logger.Debug("top up called", "admin_id", adminID, "user_id", userID, "amount", amount)

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, svcErr.InvalidArgument("amount must be positive")
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, svcErr.NotFound("user not found")
	}

	var credit *db.Credit
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		credit, err = repository.NewCreditRepository(tx).Grant(ctx, userID, amount)
		if err != nil {
			return err
		}
		return repository.NewTransactionRepository(tx).Create(ctx, &db.Transaction{
			UserID:           userID,
			Amount:           float64(amount),
			CreditsPurchased: amount,
			PaymentMethod:    "admin_grant",
			Status:           "completed",
		})
	})
	if err != nil {
		s.appCtx.Logger.Error("top up failed", "user_id", userID, "err", err)
		return nil, err
	}

	// Next balance read goes to the database.
	_ = s.appCtx.RedisCache.InvalidateCreditBalance(ctx, userID)

	return credit, nil
}

// GetStats aggregates the dashboard headline numbers: real users,
// total messages, outstanding credits and completed revenue.
func (s *Service) GetStats(ctx context.Context, adminID string) (*Stats, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	users, err := s.profileRepo.CountReal(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	credits, err := s.creditRepo.SumBalances(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.txnRepo.SumCompleted(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:    users,
		TotalMessages: messages,
		TotalCredits:  credits,
		Revenue:       revenue,
	}, nil
}

// ListUsers returns every real profile with its credit balance and
// activity counters, newest first.
func (s *Service) ListUsers(ctx context.Context, adminID string) ([]UserStats, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.ListReal(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]UserStats, 0, len(profiles))
	for _, p := range profiles {
		balance, err := s.creditRepo.GetBalance(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		matches, err := s.matchRepo.CountByUser(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		messages, err := s.messageRepo.CountBySender(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		stats = append(stats, UserStats{
			ProfileID: p.ID,
			UserID:    p.UserID,
			Name:      p.Name,
			Credits:   balance,
			Matches:   matches,
			Messages:  messages,
			CreatedAt: p.CreatedAt,
		})
	}
	return stats, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID string) error {
	isAdmin, err := s.profileRepo.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return svcErr.Forbidden("admin privileges required")
	}
	return nil
}
