package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleManager))
	assert.False(t, RoleUser.AtLeast(RoleManager))
	assert.True(t, RoleUser.AtLeast(RoleUser))
	assert.False(t, Role("Root").AtLeast(RoleUser))
	assert.False(t, Role("").AtLeast(Role("")))
}

func TestParseRoleIsCaseSensitive(t *testing.T) {
	r, ok := ParseRole("Manager")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	_, ok = ParseRole("manager")
	assert.False(t, ok)
}

func TestParseLoanStatus(t *testing.T) {
	s, ok := ParseLoanStatus("")
	assert.True(t, ok)
	assert.Equal(t, LoanStatusActive, s)

	_, ok = ParseLoanStatus("defaulted")
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrUsernameTaken, ErrDuplicateEntry))
	assert.True(t, errors.Is(ErrLoanNotFound, ErrNotFound))
	assert.True(t, errors.Is(Validation("bad"), ErrInvalidInput))
	assert.False(t, errors.Is(ErrInsufficientRole, ErrUnauthorized))
	assert.Equal(t, "bad", Validation("bad").Error())
}

func TestPaymentAuditAction(t *testing.T) {
	assert.Equal(t, "Payment of 500.00 made", PaymentAuditAction(decimal.NewFromInt(500)))
	assert.Equal(t, "Payment of 0.10 made", PaymentAuditAction(decimal.RequireFromString("0.1")))
}
