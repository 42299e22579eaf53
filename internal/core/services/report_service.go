package services

import (
	"context"
	"time"

	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService builds portfolio summaries
type ReportService struct {
	loanRepo repositories.LoanRepository
	userRepo repositories.UserRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new report service
func NewReportService(loanRepo repositories.LoanRepository, userRepo repositories.UserRepository, log *zap.Logger) *ReportService {
	return &ReportService{
		loanRepo: loanRepo,
		userRepo: userRepo,
		log:      log,
		now:      time.Now,
	}
}

// StatusTotals represents loans sharing a status
type StatusTotals struct {
	Status             string          `json:"status"`
	Count              int64           `json:"count"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

// PortfolioSummary represents the portfolio summary
type PortfolioSummary struct {
	TotalLoans         int64            `json:"totalLoans"`
	OutstandingBalance decimal.Decimal  `json:"outstandingBalance"`
	ByStatus           []StatusTotals   `json:"byStatus"`
	UsersByRole        map[string]int64 `json:"usersByRole"`
	GeneratedAt        time.Time        `json:"generatedAt"`
}

// Summary aggregates loans by status and users by role
func (s *ReportService) Summary(ctx context.Context) (*PortfolioSummary, error) {
	groups, err := s.loanRepo.SummarizeByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PortfolioSummary{
		OutstandingBalance: decimal.Zero,
		ByStatus:           make([]StatusTotals, 0, len(groups)),
		UsersByRole:        make(map[string]int64),
		GeneratedAt:        s.now().UTC(),
	}

	for _, g := range groups {
		summary.TotalLoans += g.Count
		summary.OutstandingBalance = summary.OutstandingBalance.Add(g.OutstandingBalance)
		summary.ByStatus = append(summary.ByStatus, StatusTotals{
			Status:             g.Status,
			Count:              g.Count,
			OutstandingBalance: g.OutstandingBalance,
		})
	}

	for _, role := range domain.AllRoles {
		n, err := s.userRepo.CountByRole(ctx, string(role))
		if err != nil {
			return nil, err
		}
		summary.UsersByRole[string(role)] = n
	}

	return summary, nil
}

// LogSummary writes the current summary to the log
func (s *ReportService) LogSummary(ctx context.Context) {
	summary, err := s.Summary(ctx)
	if err != nil {
		s.log.Error("portfolio summary failed", zap.Error(err))
		return
	}

	s.log.Info("portfolio summary",
		zap.Int64("total_loans", summary.TotalLoans),
		zap.String("outstanding_balance", summary.OutstandingBalance.StringFixed(2)),
		zap.Any("users_by_role", summary.UsersByRole),
	)
}
