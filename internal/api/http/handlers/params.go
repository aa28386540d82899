package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/auth"
	"github.com/auditkit/revision-service/internal/domain"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

func principal(c *fiber.Ctx) (domain.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Principal{}, apperrors.NewUnauthorized("authentication required")
	}
	return *p, nil
}

func entityType(c *fiber.Ctx) (domain.EntityType, error) {
	et, err := domain.ParseEntityType(c.Params("entity"))
	if err != nil {
		return "", apperrors.NewNotFound("entity type", map[string]any{"entity": c.Params("entity")})
	}
	return et, nil
}

func int64Param(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id, nil
}

// bind parses the JSON body into v and validates it.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(v)
}
