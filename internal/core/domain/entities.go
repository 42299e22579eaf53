package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleUser    Role = "User"
	RoleManager Role = "Manager"
	RoleAdmin   Role = "Admin"
)

// AllRoles lists the fixed role set, lowest privilege first
var AllRoles = []Role{RoleUser, RoleManager, RoleAdmin}

// ParseRole returns the role matching s exactly
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Rank orders roles by privilege. Unknown roles rank below User.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r carries at least the privilege of min
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusPaid   LoanStatus = "paid"
)

// ParseLoanStatus accepts only reachable statuses; empty means active.
func ParseLoanStatus(s string) (LoanStatus, bool) {
	switch LoanStatus(s) {
	case "", LoanStatusActive:
		return LoanStatusActive, true
	case LoanStatusPaid:
		return LoanStatusPaid, true
	default:
		return "", false
	}
}

// AuditActionLoanCreated is recorded once per created loan
const AuditActionLoanCreated = "Loan created"

// PaymentAuditAction describes an applied payment
func PaymentAuditAction(amount decimal.Decimal) string {
	return fmt.Sprintf("Payment of %s made", amount.StringFixed(2))
}

// Principal is the verified caller identity reconstructed from a session token
type Principal struct {
	UserID   uint
	Username string
	Role     Role
}
