package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanledger/internal/adapters/persistence/dbtest"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/pkg/jwt"
	"loanledger/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	m.Run()
}

type fixture struct {
	users   repositories.UserRepository
	loans   repositories.LoanRepository
	audits  repositories.AuditLogRepository
	uow     repositories.UnitOfWork
	auth    *AuthService
	user    *UserService
	loan    *LoanService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	log := zap.NewNop()
	issuer := jwt.NewIssuer("test-secret", "loanledger", "loanledger-clients", time.Hour)

	f := &fixture{
		users:  repositories.NewUserRepository(db),
		loans:  repositories.NewLoanRepository(db),
		audits: repositories.NewAuditLogRepository(db),
		uow:    repositories.NewUnitOfWork(db),
	}
	f.auth = NewAuthService(f.users, issuer, log)
	f.user = NewUserService(f.users, log)
	f.loan = NewLoanService(f.loans, f.audits, f.uow, log)
	f.reports = NewReportService(f.loans, f.users, log)
	return f
}

func (f *fixture) register(t *testing.T, username, role string) *AuthResponse {
	t.Helper()

	resp, err := f.auth.Register(context.Background(), &RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return resp
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
