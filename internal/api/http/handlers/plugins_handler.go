package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/service"
)

// PluginsHandler shows, installs and clears the optional form fields.
type PluginsHandler struct {
	service *service.PluginService
}

// NewPluginsHandler constructs handler.
func NewPluginsHandler(pluginService *service.PluginService) *PluginsHandler {
	return &PluginsHandler{service: pluginService}
}

// Fields GET /api/admin/plugins/cache-ttl.
func (h *PluginsHandler) Fields(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.FormFields(h.service.Fields())})
}

// InstallCacheTTL PUT /api/admin/plugins/cache-ttl.
func (h *PluginsHandler) InstallCacheTTL(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	fields := h.service.InstallCacheTTL(c.UserContext(), p)
	return c.JSON(fiber.Map{"data": dto.FormFields(fields)})
}

// Clear DELETE /api/admin/plugins/cache-ttl.
func (h *PluginsHandler) Clear(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	h.service.Clear(c.UserContext(), p)
	return c.SendStatus(fiber.StatusNoContent)
}
