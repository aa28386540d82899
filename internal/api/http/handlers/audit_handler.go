package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/service"
)

// AuditHandler serves the admin audit tables.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// Subscriptions GET /api/admin/audit/subscriptions?dashboard=.
func (h *AuditHandler) Subscriptions(c *fiber.Ctx) error {
	view, err := h.service.Subscriptions(c.UserContext(), c.Query("dashboard"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// DeleteSubscription DELETE /api/admin/audit/subscriptions/:id.
func (h *AuditHandler) DeleteSubscription(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteSubscription(c.UserContext(), p, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Alerts GET /api/admin/audit/alerts?search=.
func (h *AuditHandler) Alerts(c *fiber.Ctx) error {
	view, err := h.service.Alerts(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Alert GET /api/admin/audit/alerts/:id.
func (h *AuditHandler) Alert(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	alert, err := h.service.Alert(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Alert(*alert)})
}

// SetAlertChannels PUT /api/admin/audit/alerts/:id/channels.
func (h *AuditHandler) SetAlertChannels(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetChannelsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	alert, err := h.service.SetAlertChannels(c.UserContext(), p, id, req.Domain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Alert(*alert)})
}

// DeleteAlert DELETE /api/admin/audit/alerts/:id.
func (h *AuditHandler) DeleteAlert(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteAlert(c.UserContext(), p, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
