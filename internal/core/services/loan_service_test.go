package services

import (
	"context"
	"sync"
	"testing"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func managerPrincipal(t *testing.T, f *fixture) *domain.Principal {
	reg := f.register(t, "manager", "Manager")
	return &domain.Principal{UserID: reg.User.ID, Username: "manager", Role: domain.RoleManager}
}

func TestCreateLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{
		Amount:        dec("1500.00"),
		ApplicantName: "Maria Silva",
	})
	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.True(t, loan.CurrentBalance.Equal(dec("1500")))
	assert.Equal(t, "active", loan.Status)

	entries, err := f.loan.GetAuditLogs(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Loan created", entries[0].Action)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, actor.UserID, *entries[0].UserID)

	got, err := f.loan.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", got.ApplicantName)
}

func TestCreateLoanValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	tests := []struct {
		name  string
		input CreateLoanInput
	}{
		{"missing applicant", CreateLoanInput{Amount: dec("100")}},
		{"zero amount", CreateLoanInput{Amount: dec("0"), ApplicantName: "A"}},
		{"negative amount", CreateLoanInput{Amount: dec("-5"), ApplicantName: "A"}},
		{"sub-cent amount", CreateLoanInput{Amount: dec("10.001"), ApplicantName: "A"}},
		{"balance above amount", CreateLoanInput{Amount: dec("100"), CurrentBalance: decPtr("100.01"), ApplicantName: "A"}},
		{"negative balance", CreateLoanInput{Amount: dec("100"), CurrentBalance: decPtr("-1"), ApplicantName: "A"}},
		{"unknown status", CreateLoanInput{Amount: dec("100"), ApplicantName: "A", Status: "defaulted"}},
		{"paid with balance", CreateLoanInput{Amount: dec("100"), ApplicantName: "A", Status: "paid"}},
		{"active with zero balance", CreateLoanInput{Amount: dec("100"), CurrentBalance: decPtr("0"), ApplicantName: "A", Status: "active"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.loan.CreateLoan(ctx, actor, &input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	total, err := f.loans.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total, "rejected loans leave no rows")
}

func TestCreatePaidLoan(t *testing.T) {
	f := newFixture(t)
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(context.Background(), actor, &CreateLoanInput{
		Amount:         dec("250"),
		CurrentBalance: decPtr("0"),
		ApplicantName:  "Closed Account",
		Status:         "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", loan.Status)
}

func TestGetLoanNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.loan.GetLoan(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMakePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{Amount: dec("1000"), ApplicantName: "Jon"})
	require.NoError(t, err)

	updated, err := f.loan.MakePayment(ctx, actor, loan.ID, dec("250.50"))
	require.NoError(t, err)
	assert.True(t, updated.CurrentBalance.Equal(dec("749.50")))
	assert.Equal(t, "active", updated.Status)

	_, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("749.51"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)
	_, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)
	_, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("-10"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)
	_, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("1.005"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("749.50"))
	require.NoError(t, err)
	assert.True(t, updated.CurrentBalance.IsZero())
	assert.Equal(t, "paid", updated.Status)

	_, err = f.loan.MakePayment(ctx, actor, loan.ID, dec("0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount, "paid loans accept no payment")

	entries, err := f.loan.GetAuditLogs(ctx, loan.ID)
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	assert.Equal(t, []string{
		"Loan created",
		"Payment of 250.50 made",
		"Payment of 749.50 made",
	}, actions)
}

func TestMakePaymentUnknownLoan(t *testing.T) {
	f := newFixture(t)
	actor := managerPrincipal(t, f)

	_, err := f.loan.MakePayment(context.Background(), actor, 404, dec("-1"))
	assert.ErrorIs(t, err, domain.ErrLoanNotFound, "lookup happens before amount validation")

	entries, err := f.loan.GetAuditLogs(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestConcurrentPaymentsKeepBalanceConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{Amount: dec("1000"), ApplicantName: "Race"})
	require.NoError(t, err)

	const payers = 8
	var wg sync.WaitGroup
	errs := make([]error, payers)
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.loan.MakePayment(ctx, actor, loan.ID, dec("100"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}

	got, err := f.loan.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	expected := dec("1000").Sub(decimal.NewFromInt(int64(succeeded) * 100))
	assert.True(t, got.CurrentBalance.Equal(expected), "balance %s, expected %s", got.CurrentBalance, expected)

	entries, err := f.loan.GetAuditLogs(ctx, loan.ID)
	require.NoError(t, err)
	assert.Len(t, entries, succeeded+1)

	assert.Equal(t, payers, succeeded, "errors: %v", errs)
	assert.True(t, got.CurrentBalance.Equal(dec("200")), "balance %s", got.CurrentBalance)
	assert.Equal(t, string(domain.LoanStatusActive), got.Status)
}

// racingUnitOfWork makes the first stale transactions read an outdated loan
// version, as if another payment committed in between.
type racingUnitOfWork struct {
	repositories.UnitOfWork
	stale    int
	attempts int
}

func (u *racingUnitOfWork) Do(ctx context.Context, fn func(repos repositories.TxRepositories) error) error {
	u.attempts++
	outdated := u.attempts <= u.stale
	return u.UnitOfWork.Do(ctx, func(repos repositories.TxRepositories) error {
		if outdated {
			repos.Loans = outdatedLoans{repos.Loans}
		}
		return fn(repos)
	})
}

type outdatedLoans struct {
	repositories.LoanRepository
}

func (r outdatedLoans) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := r.LoanRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Version--
	return loan, nil
}

func TestMakePaymentRetriesAfterVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{Amount: dec("1000"), ApplicantName: "Retry"})
	require.NoError(t, err)

	uow := &racingUnitOfWork{UnitOfWork: f.uow, stale: 1}
	svc := NewLoanService(f.loans, f.audits, uow, zap.NewNop())

	paid, err := svc.MakePayment(ctx, actor, loan.ID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, 2, uow.attempts)
	assert.True(t, paid.CurrentBalance.Equal(dec("900")))

	got, err := f.loan.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("900")), "balance %s", got.CurrentBalance)

	entries, err := f.loan.GetAuditLogs(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Payment of 100.00 made", entries[1].Action)
}

func TestMakePaymentGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	loan, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{Amount: dec("1000"), ApplicantName: "Contended"})
	require.NoError(t, err)

	uow := &racingUnitOfWork{UnitOfWork: f.uow, stale: maxPaymentAttempts + 1}
	svc := NewLoanService(f.loans, f.audits, uow, zap.NewNop())

	_, err = svc.MakePayment(ctx, actor, loan.ID, dec("100"))
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, maxPaymentAttempts, uow.attempts)

	got, err := f.loan.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("1000")), "balance %s", got.CurrentBalance)

	entries, err := f.loan.GetAuditLogs(ctx, loan.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListLoans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := managerPrincipal(t, f)

	for _, name := range []string{"Ana", "Bruno", "Ana Clara"} {
		_, err := f.loan.CreateLoan(ctx, actor, &CreateLoanInput{Amount: dec("100"), ApplicantName: name})
		require.NoError(t, err)
	}

	page, err := f.loan.ListLoans(ctx, &ListLoansInput{Filter: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 2)

	page, err = f.loan.ListLoans(ctx, &ListLoansInput{Filter: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, []*models.Loan{}, page.Data)

	page, err = f.loan.ListLoans(ctx, &ListLoansInput{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Empty(t, page.Data)
}
