package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/save"
	"github.com/auditkit/revision-service/internal/service"
)

// EntitiesHandler manages question and dashboard endpoints.
type EntitiesHandler struct {
	entities  *service.EntityService
	revisions *service.RevisionService
}

// NewEntitiesHandler constructs handler.
func NewEntitiesHandler(entities *service.EntityService, revisions *service.RevisionService) *EntitiesHandler {
	return &EntitiesHandler{entities: entities, revisions: revisions}
}

// Save POST /api/:entity.
func (h *EntitiesHandler) Save(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	et, err := entityType(c)
	if err != nil {
		return err
	}
	var req dto.SaveEntityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.entities.Save(c.UserContext(), p, service.SaveInput{
		EntityType:   et,
		ID:           req.ID,
		SaveAsNew:    req.SaveAsNew,
		CollectionID: req.CollectionID,
		Name:         req.Name,
		Description:  req.Description,
		Content:      req.Content,
		Extensions:   req.Extensions,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.Action == save.ActionCreate {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.SaveResult(res.Action, res.Entity, res.Revision)})
}

// Get GET /api/:entity/:id.
func (h *EntitiesHandler) Get(c *fiber.Ctx) error {
	et, err := entityType(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	snap, err := h.entities.Get(c.UserContext(), et, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Entity(*snap)})
}

// Move POST /api/:entity/:id/move.
func (h *EntitiesHandler) Move(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	et, err := entityType(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.MoveEntityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.entities.Move(c.UserContext(), p, et, id, req.CollectionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SaveResult(res.Action, res.Entity, res.Revision)})
}

// Timeline GET /api/:entity/:id/revisions.
func (h *EntitiesHandler) Timeline(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	et, err := entityType(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.revisions.Timeline(c.UserContext(), p, et, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Timeline(entries)})
}

// Diff GET /api/:entity/:id/revisions/:revisionID/diff.
func (h *EntitiesHandler) Diff(c *fiber.Ctx) error {
	et, err := entityType(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	revisionID, err := int64Param(c, "revisionID")
	if err != nil {
		return err
	}

	diffs, err := h.revisions.Diff(c.UserContext(), et, id, revisionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": diffs})
}

// Revert POST /api/:entity/:id/revert.
func (h *EntitiesHandler) Revert(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	et, err := entityType(c)
	if err != nil {
		return err
	}
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.RevertRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	restored, rev, err := h.revisions.Revert(c.UserContext(), p, et, id, req.RevisionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SaveResult(save.ActionUpdate, *restored, rev)})
}

// CreateCollection POST /api/collections.
func (h *EntitiesHandler) CreateCollection(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCollectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	col, err := h.entities.CreateCollection(c.UserContext(), p, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CollectionResponse{ID: col.ID, Name: col.Name}})
}
