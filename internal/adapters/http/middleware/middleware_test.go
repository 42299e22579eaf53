package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loanledger/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]*domain.Principal

func (s stubValidator) ValidateAccessToken(accessToken string) (*domain.Principal, error) {
	if p, ok := s[accessToken]; ok {
		return p, nil
	}
	return nil, domain.ErrTokenInvalid
}

func gateApp(access Access, before ...fiber.Handler) *fiber.App {
	validator := stubValidator{
		"user":    {UserID: 1, Username: "u", Role: domain.RoleUser},
		"manager": {UserID: 2, Username: "m", Role: domain.RoleManager},
		"admin":   {UserID: 3, Username: "a", Role: domain.RoleAdmin},
	}

	app := fiber.New()
	chain := append([]fiber.Handler{RequireAccess(validator, access)}, before...)
	chain = append(chain, func(c *fiber.Ctx) error {
		if p := GetPrincipal(c); p != nil {
			return c.SendString(p.Username)
		}
		return c.SendString("anonymous")
	})
	app.Get("/target/:id", chain...)
	return app
}

func status(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireAccess(t *testing.T) {
	tests := []struct {
		name   string
		access Access
		header string
		want   int
	}{
		{"public without token", Public, "", http.StatusOK},
		{"missing token", Authenticated, "", http.StatusUnauthorized},
		{"wrong scheme", Authenticated, "Basic user", http.StatusUnauthorized},
		{"unknown token", Authenticated, "Bearer nope", http.StatusUnauthorized},
		{"user authenticated", Authenticated, "Bearer user", http.StatusOK},
		{"scheme is case insensitive", Authenticated, "bearer user", http.StatusOK},
		{"user below manager", ManagerOrAdmin, "Bearer user", http.StatusForbidden},
		{"manager", ManagerOrAdmin, "Bearer manager", http.StatusOK},
		{"admin counts as manager", ManagerOrAdmin, "Bearer admin", http.StatusOK},
		{"manager below admin", AdminOnly, "Bearer manager", http.StatusForbidden},
		{"admin", AdminOnly, "Bearer admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(t, gateApp(tt.access), "/target/9", tt.header))
		})
	}
}

func TestForbidSelfTarget(t *testing.T) {
	app := gateApp(AdminOnly, ForbidSelfTarget("id"))

	assert.Equal(t, http.StatusBadRequest, status(t, app, "/target/3", "Bearer admin"))
	assert.Equal(t, http.StatusOK, status(t, app, "/target/1", "Bearer admin"))
	assert.Equal(t, http.StatusOK, status(t, app, "/target/abc", "Bearer admin"))
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/private", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/public", PublicCache(time.Hour), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", PublicCache(time.Hour), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	get := func(path string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, "no-store, no-cache, must-revalidate", get("/private").Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "public, max-age=3600", get("/public").Header.Get(fiber.HeaderCacheControl))
	assert.Empty(t, get("/missing").Header.Get(fiber.HeaderCacheControl))
}

func TestAccessString(t *testing.T) {
	assert.Equal(t, "manager-or-admin", ManagerOrAdmin.String())
	assert.Equal(t, "access(9)", Access(9).String())
}
