package middleware

import (
	"strconv"
	"strings"

	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Access is the minimum clearance a route requires
type Access int

const (
	Public Access = iota
	Authenticated
	ManagerOrAdmin
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case ManagerOrAdmin:
		return "manager-or-admin"
	case AdminOnly:
		return "admin-only"
	default:
		return "access(" + strconv.Itoa(int(a)) + ")"
	}
}

// minRole returns the lowest role admitted by a
func (a Access) minRole() domain.Role {
	switch a {
	case AdminOnly:
		return domain.RoleAdmin
	case ManagerOrAdmin:
		return domain.RoleManager
	default:
		return domain.RoleUser
	}
}

// principalKey is the fiber Locals key holding the verified caller
const principalKey = "principal"

// TokenValidator turns a bearer token into the caller it names
type TokenValidator interface {
	ValidateAccessToken(accessToken string) (*domain.Principal, error)
}

// RequireAccess creates the gate for one route. Public routes pass through;
// every other level needs a valid bearer token whose role ranks at least
// as high as the level.
func RequireAccess(validator TokenValidator, access Access) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if access == Public {
			return c.Next()
		}

		// 1. Extract bearer token
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, domain.ErrTokenMissing.Message)
		}

		// 2. Validate token
		principal, err := validator.ValidateAccessToken(accessToken)
		if err != nil {
			return response.FromError(c, err)
		}

		// 3. Check role
		if !principal.Role.AtLeast(access.minRole()) {
			return response.Forbidden(c, domain.ErrInsufficientRole.Message)
		}

		// 4. Set caller in context
		c.Locals(principalKey, principal)

		return c.Next()
	}
}

// GetPrincipal returns the caller verified by RequireAccess, or nil on public routes
func GetPrincipal(c *fiber.Ctx) *domain.Principal {
	principal, _ := c.Locals(principalKey).(*domain.Principal)
	return principal
}

// ForbidSelfTarget rejects requests whose :param names the caller's own user id
func ForbidSelfTarget(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		if principal == nil {
			return response.Unauthorized(c, domain.ErrTokenMissing.Message)
		}

		id, err := strconv.ParseUint(c.Params(param), 10, 32)
		if err == nil && uint(id) == principal.UserID {
			return response.BadRequest(c, domain.ErrCannotDeactivateSelf.Message)
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}
