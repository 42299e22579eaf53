package routes

import (
	"context"
	"time"

	"loanledger/internal/adapters/http/handlers"
	"loanledger/internal/adapters/http/middleware"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/config"
	"loanledger/internal/core/services"
	"loanledger/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Route binds one method and path to its access level and handler chain.
// Before runs after the gate and ahead of Handler.
type Route struct {
	Method  string
	Path    string
	Access  middleware.Access
	Before  []fiber.Handler
	Handler fiber.Handler
}

// Handlers groups the HTTP handlers referenced by the route table
type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Loan   *handlers.LoanHandler
}

// Table returns every route of the API. Static segments come before
// parameterized siblings so /loans/summary never reaches /loans/:id.
func Table(h *Handlers, authLimiter fiber.Handler) []Route {
	noCache := middleware.NoCacheHeaders()

	return []Route{
		// Health & docs
		{Method: fiber.MethodGet, Path: "/", Access: middleware.Public, Handler: h.Health.Root},
		{Method: fiber.MethodGet, Path: "/health", Access: middleware.Public, Handler: h.Health.HealthCheck},
		{Method: fiber.MethodGet, Path: "/swagger/*", Access: middleware.Public, Before: []fiber.Handler{middleware.PublicCache(time.Hour)}, Handler: swagger.HandlerDefault},

		// Auth
		{Method: fiber.MethodPost, Path: "/auth/login", Access: middleware.Public, Before: []fiber.Handler{authLimiter, noCache}, Handler: h.Auth.Login},
		{Method: fiber.MethodPost, Path: "/auth/register", Access: middleware.Public, Before: []fiber.Handler{authLimiter, noCache}, Handler: h.Auth.Register},
		{Method: fiber.MethodGet, Path: "/auth/profile", Access: middleware.Authenticated, Before: []fiber.Handler{noCache}, Handler: h.Auth.Profile},
		{Method: fiber.MethodPost, Path: "/auth/change-password", Access: middleware.Authenticated, Before: []fiber.Handler{noCache}, Handler: h.Auth.ChangePassword},

		// User management
		{Method: fiber.MethodGet, Path: "/auth/users", Access: middleware.ManagerOrAdmin, Before: []fiber.Handler{noCache}, Handler: h.User.ListUsers},
		{Method: fiber.MethodGet, Path: "/auth/users/:id", Access: middleware.ManagerOrAdmin, Before: []fiber.Handler{noCache}, Handler: h.User.GetUser},
		{Method: fiber.MethodPut, Path: "/auth/users/:id/role", Access: middleware.AdminOnly, Handler: h.User.UpdateRole},
		{Method: fiber.MethodDelete, Path: "/auth/users/:id", Access: middleware.AdminOnly, Before: []fiber.Handler{middleware.ForbidSelfTarget("id")}, Handler: h.User.Deactivate},

		// Loans
		{Method: fiber.MethodPost, Path: "/loans", Access: middleware.ManagerOrAdmin, Handler: h.Loan.CreateLoan},
		{Method: fiber.MethodGet, Path: "/loans", Access: middleware.Authenticated, Before: []fiber.Handler{noCache}, Handler: h.Loan.ListLoans},
		{Method: fiber.MethodGet, Path: "/loans/summary", Access: middleware.ManagerOrAdmin, Before: []fiber.Handler{noCache}, Handler: h.Loan.Summary},
		{Method: fiber.MethodGet, Path: "/loans/:id", Access: middleware.Authenticated, Before: []fiber.Handler{noCache}, Handler: h.Loan.GetLoan},
		{Method: fiber.MethodPost, Path: "/loans/:id/payment", Access: middleware.Authenticated, Handler: h.Loan.MakePayment},
		{Method: fiber.MethodGet, Path: "/loans/:id/audit", Access: middleware.Authenticated, Before: []fiber.Handler{noCache}, Handler: h.Loan.GetAuditLogs},
	}
}

// Register mounts routes on router, putting the access gate first in every chain
func Register(router fiber.Router, validator middleware.TokenValidator, table []Route) {
	for _, r := range table {
		chain := make([]fiber.Handler, 0, len(r.Before)+2)
		chain = append(chain, middleware.RequireAccess(validator, r.Access))
		chain = append(chain, r.Before...)
		chain = append(chain, r.Handler)
		router.Add(r.Method, r.Path, chain...)
	}
}

// Setup wires repositories, services and handlers and mounts the route table.
// storage backs the auth rate limiter; nil keeps counters in memory.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger, storage fiber.Storage) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize services
	issuer := jwt.NewIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		time.Duration(cfg.JWT.AccessTokenMins)*time.Minute,
	)
	authService := services.NewAuthService(userRepo, issuer, log)
	userService := services.NewUserService(userRepo, log)
	loanService := services.NewLoanService(loanRepo, auditRepo, uow, log)
	reportService := services.NewReportService(loanRepo, userRepo, log)

	// Initialize handlers
	h := &Handlers{
		Health: handlers.NewHealthHandler(cfg.AppMode, func(ctx context.Context) error {
			return config.HealthCheck(ctx, db)
		}, log),
		Auth: handlers.NewAuthHandler(authService, userService, log),
		User: handlers.NewUserHandler(userService, log),
		Loan: handlers.NewLoanHandler(loanService, reportService, log),
	}

	Register(app, authService, Table(h, middleware.AuthRateLimiter(cfg, storage)))
}
