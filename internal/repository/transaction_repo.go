package repository

import (
	"context"

	"github.com/oduya/pendo/internal/db"

	"gorm.io/gorm"
)

// TransactionRepository records credit grants. Only admin top-ups write
// here; the dashboard reads it for the revenue figure.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new repository bound to the given DB connection.
func NewTransactionRepository(database *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: database}
}

// Create appends a transaction row.
func (r *TransactionRepository) Create(ctx context.Context, txn *db.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// SumCompleted totals the amounts of completed transactions.
func (r *TransactionRepository) SumCompleted(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&db.Transaction{}).
		Where("status = ?", "completed").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
