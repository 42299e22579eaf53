package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User represents users table. Deactivated users keep their row so
// username and email stay claimed.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:50;not null" json:"firstName"`
	LastName     string     `gorm:"size:50;not null" json:"lastName"`
	Role         string     `gorm:"size:20;not null;default:'User'" json:"role"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	IsActive     bool       `gorm:"not null;index" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	IsActive    bool       `json:"isActive"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		IsActive:    u.IsActive,
	}
}

// ============================================================
// Loans
// ============================================================

// Loan represents loans table
type Loan struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"currentBalance"`
	ApplicantName  string          `gorm:"size:100;not null;index" json:"applicantName"`
	Status         string          `gorm:"size:20;not null;index" json:"status"`
	Version        int64           `gorm:"not null" json:"-"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Loan) TableName() string {
	return "loans"
}

// AuditLog represents audit_logs table. Rows are append-only.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LoanID    uint      `gorm:"not null;index" json:"loanId"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	UserID    *uint     `gorm:"index" json:"userId"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Loan{},
		&AuditLog{},
	)
}
