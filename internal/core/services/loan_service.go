package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxPaymentAttempts bounds retries after an optimistic version conflict
const maxPaymentAttempts = 5

// maxApplicantNameLen matches the applicant_name column size
const maxApplicantNameLen = 100

// LoanService handles loan business logic
type LoanService struct {
	loanRepo  repositories.LoanRepository
	auditRepo repositories.AuditLogRepository
	uow       repositories.UnitOfWork
	log       *zap.Logger
	now       func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	auditRepo repositories.AuditLogRepository,
	uow repositories.UnitOfWork,
	log *zap.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:  loanRepo,
		auditRepo: auditRepo,
		uow:       uow,
		log:       log,
		now:       time.Now,
	}
}

// CreateLoanInput represents create loan input.
// A nil CurrentBalance means the full amount is outstanding.
type CreateLoanInput struct {
	Amount         decimal.Decimal
	CurrentBalance *decimal.Decimal
	ApplicantName  string
	Status         string
}

// ListLoansInput represents list loans input
type ListLoansInput struct {
	Page     int
	PageSize int
	Filter   string
	Sort     string
}

// CreateLoan persists a loan and its "Loan created" audit entry atomically
func (s *LoanService) CreateLoan(ctx context.Context, actor *domain.Principal, input *CreateLoanInput) (*models.Loan, error) {
	loan, err := s.buildLoan(input)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
		if err := repos.Loans.Create(ctx, loan); err != nil {
			return err
		}
		return repos.Audits.Append(ctx, s.auditEntry(loan.ID, actor, domain.AuditActionLoanCreated))
	})
	if err != nil {
		s.log.Error("create loan failed", zap.Error(err), zap.Uint("actor_id", actorID(actor)))
		return nil, err
	}

	s.log.Info("loan created",
		zap.Uint("loan_id", loan.ID),
		zap.String("amount", loan.Amount.StringFixed(2)),
		zap.Uint("actor_id", actorID(actor)),
	)
	return loan, nil
}

// GetLoan gets a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// ListLoans lists loans with filter, sort and pagination
func (s *LoanService) ListLoans(ctx context.Context, input *ListLoansInput) (*pagination.Page[*models.Loan], error) {
	params := pagination.New(input.Page, input.PageSize)

	loans, total, err := s.loanRepo.List(ctx, repositories.LoanListQuery{
		Filter: input.Filter,
		Sort:   input.Sort,
		Offset: params.Offset,
		Limit:  params.PageSize,
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(loans, params, total), nil
}

// MakePayment applies a payment to a loan. The balance read, the write-back
// and the audit entry share one transaction; the write-back only succeeds if
// no other payment committed in between, otherwise the attempt is retried.
func (s *LoanService) MakePayment(ctx context.Context, actor *domain.Principal, loanID uint, amount decimal.Decimal) (*models.Loan, error) {
	for attempt := 1; attempt <= maxPaymentAttempts; attempt++ {
		var updated *models.Loan

		err := s.uow.Do(ctx, func(repos repositories.TxRepositories) error {
			loan, err := repos.Loans.GetByID(ctx, loanID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrLoanNotFound
				}
				return err
			}

			if err := validatePayment(loan, amount); err != nil {
				return err
			}

			loan.CurrentBalance = loan.CurrentBalance.Sub(amount)
			if loan.CurrentBalance.IsZero() {
				loan.Status = string(domain.LoanStatusPaid)
			}

			if err := repos.Loans.UpdateBalance(ctx, loan); err != nil {
				return err
			}
			if err := repos.Audits.Append(ctx, s.auditEntry(loan.ID, actor, domain.PaymentAuditAction(amount))); err != nil {
				return err
			}

			updated = loan
			return nil
		})

		if errors.Is(err, repositories.ErrVersionConflict) {
			s.log.Debug("payment version conflict, retrying", zap.Uint("loan_id", loanID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("payment applied",
			zap.Uint("loan_id", loanID),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("balance", updated.CurrentBalance.StringFixed(2)),
			zap.String("status", updated.Status),
			zap.Uint("actor_id", actorID(actor)),
		)
		return updated, nil
	}

	s.log.Warn("payment gave up after version conflicts", zap.Uint("loan_id", loanID))
	return nil, domain.ErrConcurrentUpdate
}

// GetAuditLogs gets the audit trail of a loan in insertion order
func (s *LoanService) GetAuditLogs(ctx context.Context, loanID uint) ([]*models.AuditLog, error) {
	entries, err := s.auditRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	return entries, nil
}

// buildLoan validates input and returns the loan to insert
func (s *LoanService) buildLoan(input *CreateLoanInput) (*models.Loan, error) {
	name := strings.TrimSpace(input.ApplicantName)
	if name == "" {
		return nil, domain.Validation("applicantName is required")
	}
	if len(name) > maxApplicantNameLen {
		return nil, domain.Validation("applicantName must be at most 100 characters")
	}

	if !input.Amount.IsPositive() {
		return nil, domain.Validation("amount must be greater than zero")
	}
	if !hasCents(input.Amount) {
		return nil, domain.Validation("amount must have at most 2 decimal places")
	}

	balance := input.Amount
	if input.CurrentBalance != nil {
		balance = *input.CurrentBalance
	}
	if balance.IsNegative() || balance.GreaterThan(input.Amount) {
		return nil, domain.Validation("currentBalance must be between 0 and amount")
	}
	if !hasCents(balance) {
		return nil, domain.Validation("currentBalance must have at most 2 decimal places")
	}

	status, ok := domain.ParseLoanStatus(input.Status)
	if !ok {
		return nil, domain.Validation("status must be one of: active, paid")
	}
	if (status == domain.LoanStatusPaid) != balance.IsZero() {
		return nil, domain.Validation("status must be paid exactly when currentBalance is zero")
	}

	return &models.Loan{
		Amount:         input.Amount,
		CurrentBalance: balance,
		ApplicantName:  name,
		Status:         string(status),
		Version:        1,
	}, nil
}

func (s *LoanService) auditEntry(loanID uint, actor *domain.Principal, action string) *models.AuditLog {
	var userID *uint
	if actor != nil {
		id := actor.UserID
		userID = &id
	}
	return &models.AuditLog{
		LoanID:    loanID,
		Action:    action,
		Timestamp: s.now().UTC(),
		UserID:    userID,
	}
}

// validatePayment checks 0 < amount <= balance with at most 2 decimals
func validatePayment(loan *models.Loan, amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(loan.CurrentBalance) {
		return domain.ErrInvalidPaymentAmount
	}
	if !hasCents(amount) {
		return domain.Validation("payment amount must have at most 2 decimal places")
	}
	return nil
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func actorID(actor *domain.Principal) uint {
	if actor == nil {
		return 0
	}
	return actor.UserID
}
