package auth_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/auth"
	"github.com/auditkit/revision-service/internal/domain"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

func TestTokenManager(t *testing.T) {
	tm := auth.NewTokenManager("secret", 5)
	principal := domain.Principal{UserID: 9, CommonName: "Ada Lovelace", Role: domain.RoleEditor}

	token, expires, err := tm.GenerateToken(principal)
	require.NoError(t, err)
	assert.False(t, expires.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal())
	assert.Equal(t, "9", claims.Subject)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := auth.NewTokenManager("other", 5).ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		bad, _, err := tm.GenerateToken(domain.Principal{UserID: 1, Role: "ROOT"})
		require.NoError(t, err)
		_, err = tm.ParseToken(bad)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("secret", 5)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(auth.NewAuthMiddleware(tm).Handle)
	app.Get("/admin", auth.RequireAdmin(), func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(p.CommonName)
	})

	call := func(header string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	admin, _, err := tm.GenerateToken(domain.Principal{UserID: 1, CommonName: "Root", Role: domain.RoleAdmin})
	require.NoError(t, err)
	viewer, _, err := tm.GenerateToken(domain.Principal{UserID: 2, CommonName: "Viv", Role: domain.RoleViewer})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, call(""))
	assert.Equal(t, fiber.StatusUnauthorized, call("Token abc"))
	assert.Equal(t, fiber.StatusUnauthorized, call("Bearer garbage"))
	assert.Equal(t, fiber.StatusForbidden, call("Bearer "+viewer))
	assert.Equal(t, fiber.StatusOK, call("Bearer "+admin))
}
