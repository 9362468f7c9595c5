package repository

import (
	"context"
	"errors"

	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditRepository provides data access methods for the Credit ledger.
//
// The ledger row per user is the only shared mutable state with
// contention potential (several devices for the same user), so the
// debit is a single conditional UPDATE rather than read-modify-write.
type CreditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new repository bound to the given DB
// connection. Bind it to a transaction handle to make a debit part of
// a larger unit of work.
func NewCreditRepository(database *gorm.DB) *CreditRepository {
	return &CreditRepository{db: database}
}

// GetBalance returns the user's current balance.
// A missing ledger row reads as balance 0, never as an error.
func (r *CreditRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var credit db.Credit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&credit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return credit.Balance, nil
}

// Debit atomically spends one credit:
//
//	UPDATE credits SET balance = balance - 1
//	WHERE user_id = ? AND balance > 0
//
// RowsAffected = 0 means the row is missing or the balance is already
// zero; both surface as ErrInsufficientCredit. Two concurrent debits
// against balance 1 can therefore never both succeed.
func (r *CreditRepository) Debit(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).
		Model(&db.Credit{}).
		Where("user_id = ? AND balance > 0", userID).
		Update("balance", gorm.Expr("balance - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return svcErr.ErrInsufficientCredit
	}
	return nil
}

// Grant adds amount credits to the user, creating the ledger row on
// first use. Returns the updated row.
func (r *CreditRepository) Grant(ctx context.Context, userID string, amount int64) (*db.Credit, error) {
	credit := db.Credit{
		UserID:         userID,
		Balance:        amount,
		TotalPurchased: amount,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":         gorm.Expr("balance + ?", amount),
				"total_purchased": gorm.Expr("total_purchased + ?", amount),
			}),
		}).
		Create(&credit).Error
	if err != nil {
		return nil, err
	}

	var stored db.Credit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// SumBalances totals all outstanding credit balances.
func (r *CreditRepository) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&db.Credit{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	return total, err
}
