package http

import (
	apperrors "recordstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

type createCollectionRequest struct {
	Name string `json:"name"`
}

// CreateCollection explicitly creates an empty collection. Collections also
// come into being on first write, so this mostly serves tooling.
func (h *Handler) CreateCollection(c *fiber.Ctx) error {
	var req createCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}

	if err := h.engine.CreateCollection(c.UserContext(), c.Params("projectID"), req.Name); err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": req.Name})
}

// ListCollections returns the project's collection metadata.
func (h *Handler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.engine.ListCollections(c.UserContext(), c.Params("projectID"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// DeleteCollection removes a collection and every record in it.
func (h *Handler) DeleteCollection(c *fiber.Ctx) error {
	if err := h.engine.DeleteCollection(c.UserContext(), c.Params("projectID"), c.Params("collection")); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
