package pagination

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"-"`
}

// DefaultPageSize is the default number of items per page
const DefaultPageSize = 10

// MaxPageSize is the maximum number of items per page
const MaxPageSize = 100

// MaxPage keeps the row offset within int32 for every page size
const MaxPage = math.MaxInt32 / MaxPageSize

// New normalizes a 1-indexed page and a page size
func New(page, pageSize int) *Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &Params{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// GetParams extracts pagination parameters from request
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", strconv.Itoa(DefaultPageSize)))
	return New(page, pageSize)
}

// TotalPages returns the number of pages needed for total items
func (p *Params) TotalPages(total int64) int {
	pages := int(total) / p.PageSize
	if int(total)%p.PageSize > 0 {
		pages++
	}
	return pages
}

// Page is a paginated result set
type Page[T any] struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Data       []T   `json:"data"`
}

// NewPage creates a new paginated result
func NewPage[T any](data []T, params *Params, total int64) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: params.TotalPages(total),
		Data:       data,
	}
}
