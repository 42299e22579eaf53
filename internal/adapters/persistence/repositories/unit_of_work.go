package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormUnitOfWork implements UnitOfWork with a gorm transaction
type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new unit of work
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

// Do runs fn in a transaction, committing only if fn returns nil
func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Loans:  NewLoanRepository(tx),
			Audits: NewAuditLogRepository(tx),
		})
	})
}
