package services

import (
	"context"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/pagination"

	"github.com/shopspring/decimal"
)

// Note: implementations live in auth_service.go, user_service.go,
// loan_service.go and report_service.go

// Authenticator defines the operations used by auth handlers and the access gate
type Authenticator interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input *LoginInput) (*AuthResponse, error)
	ValidateAccessToken(accessToken string) (*domain.Principal, error)
}

// UserManager defines user management operations
type UserManager interface {
	GetUser(ctx context.Context, id uint) (*models.UserResponse, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserResponse, error)
	ListActiveUsers(ctx context.Context) ([]*models.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error
	UpdateRole(ctx context.Context, userID uint, newRole string) error
	Deactivate(ctx context.Context, userID uint) error
}

// LoanManager defines loan operations
type LoanManager interface {
	CreateLoan(ctx context.Context, actor *domain.Principal, input *CreateLoanInput) (*models.Loan, error)
	GetLoan(ctx context.Context, id uint) (*models.Loan, error)
	ListLoans(ctx context.Context, input *ListLoansInput) (*pagination.Page[*models.Loan], error)
	MakePayment(ctx context.Context, actor *domain.Principal, loanID uint, amount decimal.Decimal) (*models.Loan, error)
	GetAuditLogs(ctx context.Context, loanID uint) ([]*models.AuditLog, error)
}

// Reporter defines portfolio reporting operations
type Reporter interface {
	Summary(ctx context.Context) (*PortfolioSummary, error)
}

var (
	_ Authenticator = (*AuthService)(nil)
	_ UserManager   = (*UserService)(nil)
	_ LoanManager   = (*LoanService)(nil)
	_ Reporter      = (*ReportService)(nil)
)
