package repositories

import (
	"context"

	"loanledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditLogRepository implements AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append inserts a new audit entry
func (r *auditLogRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByLoanID gets audit entries of a loan in insertion order
func (r *auditLogRepository) ListByLoanID(ctx context.Context, loanID uint) ([]*models.AuditLog, error) {
	var entries []*models.AuditLog
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
