package handlers

import (
	"bytes"
	"encoding/json"

	"loanledger/internal/adapters/http/middleware"
	"loanledger/internal/core/services"
	"loanledger/internal/pkg/pagination"
	"loanledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService   services.LoanManager
	reportService services.Reporter
	log           *zap.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService services.LoanManager, reportService services.Reporter, log *zap.Logger) *LoanHandler {
	return &LoanHandler{
		loanService:   loanService,
		reportService: reportService,
		log:           log,
	}
}

// CreateLoanRequest represents create loan request body.
// currentBalance defaults to amount; status defaults to active.
type CreateLoanRequest struct {
	Amount         decimal.Decimal  `json:"amount" swaggertype:"number"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty" swaggertype:"number"`
	ApplicantName  string           `json:"applicantName"`
	Status         string           `json:"status,omitempty"`
}

// PaymentRequest represents payment request body. A bare JSON number is
// accepted as well.
type PaymentRequest struct {
	Amount *decimal.Decimal `json:"amount" swaggertype:"number"`
}

// CreateLoan handles loan creation (Manager or Admin)
// @Summary Create loan
// @Description Create a loan and record a "Loan created" audit entry
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.CreateLoan(c.UserContext(), middleware.GetPrincipal(c), &services.CreateLoanInput{
		Amount:         req.Amount,
		CurrentBalance: req.CurrentBalance,
		ApplicantName:  req.ApplicantName,
		Status:         req.Status,
	})
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Created(c, "Loan created successfully", loan)
}

// GetLoan handles getting a loan by ID
// @Summary Get loan by ID
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetLoan(c.UserContext(), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}

// ListLoans handles listing loans
// @Summary List loans
// @Description Paginated list. filter is a case-sensitive substring of applicant name or status.
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Param filter query string false "Substring of applicant name or status"
// @Param sort query string false "amount, amount_desc, status or status_desc"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	page, err := h.loanService.ListLoans(c.UserContext(), &services.ListLoansInput{
		Page:     params.Page,
		PageSize: params.PageSize,
		Filter:   c.Query("filter"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Loans retrieved successfully", page)
}

// MakePayment handles applying a payment to a loan
// @Summary Make payment
// @Description Deduct a payment from the loan balance; the loan becomes paid at zero
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body PaymentRequest true "Payment amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/payment [post]
func (h *LoanHandler) MakePayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	amount, ok := parsePaymentAmount(c.Body())
	if !ok {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.MakePayment(c.UserContext(), middleware.GetPrincipal(c), id, amount)
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Payment applied successfully", loan)
}

// GetAuditLogs handles reading a loan's audit trail
// @Summary Get loan audit trail
// @Description Audit entries in insertion order; empty for unknown loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loans/{id}/audit [get]
func (h *LoanHandler) GetAuditLogs(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	entries, err := h.loanService.GetAuditLogs(c.UserContext(), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Audit logs retrieved successfully", entries)
}

// Summary handles the portfolio summary (Manager or Admin)
// @Summary Portfolio summary
// @Description Loan counts and outstanding balance per status
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/summary [get]
func (h *LoanHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reportService.Summary(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}

	return response.Success(c, "Summary retrieved successfully", summary)
}

// parsePaymentAmount accepts {"amount": n} or a bare number n
func parsePaymentAmount(body []byte) (decimal.Decimal, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return decimal.Decimal{}, false
	}

	if body[0] == '{' {
		var req PaymentRequest
		if err := json.Unmarshal(body, &req); err != nil || req.Amount == nil {
			return decimal.Decimal{}, false
		}
		return *req.Amount, true
	}

	var amount decimal.Decimal
	if err := json.Unmarshal(body, &amount); err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
