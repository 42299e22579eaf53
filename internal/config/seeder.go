package config

import (
	"context"
	"fmt"
	"time"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/password"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var demoApplicants = []string{
	"Ana Souza", "Bruno Lima", "Carla Mendes", "Diego Rocha", "Elisa Costa",
	"Felipe Alves", "Gabriela Nunes", "Hugo Martins", "Isabela Ribeiro", "João Pereira",
}

// Seeder handles database seeding
type Seeder struct {
	users repositories.UserRepository
	loans repositories.LoanRepository
	cfg   SeedConfig
	log   *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig, log *zap.Logger) *Seeder {
	return &Seeder{
		users: repositories.NewUserRepository(db),
		loans: repositories.NewLoanRepository(db),
		cfg:   cfg,
		log:   log,
	}
}

// Run executes all seeders. Each seeder is a no-op when its data already exists.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdminUser(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.seedDemoLoans(ctx); err != nil {
		return fmt.Errorf("seed demo loans: %w", err)
	}
	return nil
}

// seedAdminUser creates the first Admin when SEED_ADMIN_* is set and no Admin exists
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.cfg.AdminUsername == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	count, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least %d characters", password.MinLength)
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	email := s.cfg.AdminEmail
	if email == "" {
		email = s.cfg.AdminUsername + "@localhost"
	}

	admin := &models.User{
		Username:     s.cfg.AdminUsername,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         string(domain.RoleAdmin),
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info("admin user created", zap.String("username", admin.Username))
	return nil
}

// seedDemoLoans inserts SEED_DEMO_LOANS sample loans into an empty loans table.
// Every fourth loan is fully paid.
func (s *Seeder) seedDemoLoans(ctx context.Context) error {
	if s.cfg.DemoLoans <= 0 {
		return nil
	}

	count, err := s.loans.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	loans := make([]*models.Loan, 0, s.cfg.DemoLoans)
	for i := 0; i < s.cfg.DemoLoans; i++ {
		amount := decimal.NewFromInt(int64(1000 + (i%20)*250))
		loan := &models.Loan{
			Amount:         amount,
			CurrentBalance: amount.Sub(decimal.NewFromInt(int64((i % 3) * 100))),
			ApplicantName:  demoApplicants[i%len(demoApplicants)],
			Status:         string(domain.LoanStatusActive),
			Version:        1,
		}
		if i%4 == 3 {
			loan.CurrentBalance = decimal.Zero
			loan.Status = string(domain.LoanStatusPaid)
		}
		loans = append(loans, loan)
	}

	if err := s.loans.CreateBatch(ctx, loans); err != nil {
		return err
	}

	s.log.Info("demo loans created", zap.Int("count", len(loans)))
	return nil
}
