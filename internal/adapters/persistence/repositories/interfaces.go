package repositories

import (
	"context"
	"errors"

	"loanledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// ErrVersionConflict is returned when an optimistic write-back finds the row changed
var ErrVersionConflict = errors.New("row version conflict")

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetActiveByID(ctx context.Context, id uint) (*models.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListActive(ctx context.Context) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// LoanListQuery holds filter, sort and paging for listing loans
type LoanListQuery struct {
	Filter string
	Sort   string
	Offset int
	Limit  int
}

// StatusSummary aggregates loans sharing a status
type StatusSummary struct {
	Status             string
	Count              int64
	OutstandingBalance decimal.Decimal
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	CreateBatch(ctx context.Context, loans []*models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	List(ctx context.Context, q LoanListQuery) ([]*models.Loan, int64, error)
	// UpdateBalance writes balance and status back only if the stored version
	// still equals loan.Version, then bumps loan.Version.
	UpdateBalance(ctx context.Context, loan *models.Loan) error
	Count(ctx context.Context) (int64, error)
	SummarizeByStatus(ctx context.Context) ([]StatusSummary, error)
}

// AuditLogRepository defines audit log repository interface (append and read only)
type AuditLogRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	ListByLoanID(ctx context.Context, loanID uint) ([]*models.AuditLog, error)
}

// TxRepositories are repositories bound to one database transaction
type TxRepositories struct {
	Loans  LoanRepository
	Audits AuditLogRepository
}

// UnitOfWork runs fn inside a single transaction. Returning an error from fn
// rolls back every write made through the given repositories.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos TxRepositories) error) error
}
