package http

import (
	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

type batchCreateRequest struct {
	Records []map[string]interface{} `json:"records"`
}

type batchIDsRequest struct {
	IDs []string `json:"ids"`
}

type batchUpdateRequest struct {
	Updates []model.BatchUpdate `json:"updates"`
}

// BatchCreate stores many records in one call. Items succeed or fail
// independently; one malformed item never rejects the rest.
func (h *Handler) BatchCreate(c *fiber.Ctx) error {
	var req batchCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}
	if len(req.Records) == 0 {
		return h.mapError(c, apperrors.NewValidationError("records is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	result, err := h.engine.BatchCreate(c.UserContext(), c.Params("projectID"), c.Params("collection"), req.Records)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(batchStatus(result, fiber.StatusCreated)).JSON(result)
}

// BatchGet fetches many records by id with per-item outcomes.
func (h *Handler) BatchGet(c *fiber.Ctx) error {
	var req batchIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}
	if len(req.IDs) == 0 {
		return h.mapError(c, apperrors.NewValidationError("ids is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	result, err := h.engine.BatchGet(c.UserContext(), c.Params("projectID"), c.Params("collection"), req.IDs)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(batchStatus(result, fiber.StatusOK)).JSON(result)
}

// BatchUpdate patches many records in one call.
func (h *Handler) BatchUpdate(c *fiber.Ctx) error {
	var req batchUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}
	if len(req.Updates) == 0 {
		return h.mapError(c, apperrors.NewValidationError("updates is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	result, err := h.engine.BatchUpdate(c.UserContext(), c.Params("projectID"), c.Params("collection"), req.Updates)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(batchStatus(result, fiber.StatusOK)).JSON(result)
}

// BatchDelete removes many records by id. Absent ids count as successes.
func (h *Handler) BatchDelete(c *fiber.Ctx) error {
	var req batchIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}
	if len(req.IDs) == 0 {
		return h.mapError(c, apperrors.NewValidationError("ids is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	result, err := h.engine.BatchDelete(c.UserContext(), c.Params("projectID"), c.Params("collection"), req.IDs)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(batchStatus(result, fiber.StatusOK)).JSON(result)
}

// batchStatus picks the response status for a batch: the happy-path status
// when everything succeeded, 207 when outcomes are mixed.
func batchStatus(result *model.BatchResult, allOK int) int {
	if len(result.Errors) == 0 {
		return allOK
	}
	return fiber.StatusMultiStatus
}
