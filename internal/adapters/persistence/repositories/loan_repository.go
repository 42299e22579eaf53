package repositories

import (
	"context"
	"strings"

	"loanledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// loanSortOrders maps accepted sort keys to ORDER BY clauses. Ties fall back to id.
var loanSortOrders = map[string]string{
	"amount":      "amount ASC, id ASC",
	"amount_desc": "amount DESC, id ASC",
	"status":      "status ASC, id ASC",
	"status_desc": "status DESC, id ASC",
}

const defaultLoanOrder = "id ASC"

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// CreateBatch inserts loans in batches of 100
func (r *loanRepository) CreateBatch(ctx context.Context, loans []*models.Loan) error {
	return r.db.WithContext(ctx).CreateInBatches(loans, 100).Error
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans matching the filter with sorting and pagination.
// The returned total counts filtered rows before paging.
func (r *loanRepository) List(ctx context.Context, q LoanListQuery) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Loan{})
		if q.Filter == "" {
			return query
		}
		dialect := r.db.Dialector.Name()
		arg := containsArg(dialect, q.Filter)
		return query.Where(
			"("+containsClause(dialect, "applicant_name")+" OR "+containsClause(dialect, "status")+")",
			arg, arg,
		)
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := loanSortOrders[q.Sort]
	if !ok {
		order = defaultLoanOrder
	}

	err := filtered().
		Order(order).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&loans).Error

	return loans, total, err
}

// UpdateBalance writes current balance and status if the row version is unchanged
func (r *loanRepository) UpdateBalance(ctx context.Context, loan *models.Loan) error {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND version = ?", loan.ID, loan.Version).
		Updates(map[string]interface{}{
			"current_balance": loan.CurrentBalance,
			"status":          loan.Status,
			"version":         loan.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	loan.Version++
	return nil
}

// Count counts all loans
func (r *loanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).Count(&count).Error
	return count, err
}

// SummarizeByStatus groups loans by status with count and outstanding balance
func (r *loanRepository) SummarizeByStatus(ctx context.Context) ([]StatusSummary, error) {
	var rows []struct {
		Status             string
		Count              int64
		OutstandingBalance decimal.Decimal
	}

	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(current_balance), 0) AS outstanding_balance").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]StatusSummary, len(rows))
	for i, row := range rows {
		summaries[i] = StatusSummary{
			Status:             row.Status,
			Count:              row.Count,
			OutstandingBalance: row.OutstandingBalance,
		}
	}
	return summaries, nil
}

// containsClause builds a case-sensitive literal substring match for column
func containsClause(dialect, column string) string {
	switch dialect {
	case "mysql":
		return column + " LIKE BINARY ?"
	case "postgres":
		return "strpos(" + column + ", ?) > 0"
	default:
		return "instr(" + column + ", ?) > 0"
	}
}

// containsArg returns the bind value for containsClause
func containsArg(dialect, term string) string {
	if dialect != "mysql" {
		return term
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}
