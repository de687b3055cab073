package http

import (
	apperrors "recordstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

type createProjectRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateProject creates a project owned by the caller and grants them the
// full tier on it.
func (h *Handler) CreateProject(c *fiber.Ctx) error {
	userID, ok := UserIDFromCtx(c)
	if !ok {
		return unauthorized(c, "missing credentials")
	}

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}

	project, err := h.engine.CreateProject(c.UserContext(), req.ID, req.Name, userID)
	if err != nil {
		return h.mapError(c, err)
	}

	if err := h.auth.GrantOwner(c.UserContext(), userID, project.ID); err != nil {
		// The project exists but the grant did not land; surface it so the
		// caller retries instead of holding an unusable project.
		h.logger.Error("Failed to grant owner tier", "projectID", project.ID, "ownerID", userID, "error", err)
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// ListProjects returns the projects owned by the caller.
func (h *Handler) ListProjects(c *fiber.Ctx) error {
	userID, ok := UserIDFromCtx(c)
	if !ok {
		return unauthorized(c, "missing credentials")
	}

	projects, err := h.engine.ListProjects(c.UserContext(), userID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetProject returns a project's metadata.
func (h *Handler) GetProject(c *fiber.Ctx) error {
	project, err := h.engine.GetProject(c.UserContext(), c.Params("projectID"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject removes a project and all of its collections.
func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	if err := h.engine.DeleteProject(c.UserContext(), c.Params("projectID")); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
