package http

import (
	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// CreateRecord stores a new record in the collection, creating the
// collection on first write.
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	collection := c.Params("collection")

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}

	record, err := h.engine.CreateRecord(c.UserContext(), projectID, collection, body)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetRecord returns a single record by id.
func (h *Handler) GetRecord(c *fiber.Ctx) error {
	record, err := h.engine.GetRecord(c.UserContext(), c.Params("projectID"), c.Params("collection"), c.Params("recordID"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(record)
}

// UpdateRecord merges a partial patch into an existing record.
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	var patch map[string]interface{}
	if err := c.BodyParser(&patch); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}

	record, err := h.engine.UpdateRecord(c.UserContext(), c.Params("projectID"), c.Params("collection"), c.Params("recordID"), patch)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(record)
}

// DeleteRecord removes a record. Deleting an absent record is not an error;
// the response tells the caller whether anything was removed.
func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	deleted, err := h.engine.DeleteRecord(c.UserContext(), c.Params("projectID"), c.Params("collection"), c.Params("recordID"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

type incrementRequest struct {
	Field string  `json:"field"`
	Delta float64 `json:"delta"`
}

// IncrementField atomically adds a delta to a numeric field, creating the
// field at zero when absent.
func (h *Handler) IncrementField(c *fiber.Ctx) error {
	var req incrementRequest
	if err := c.BodyParser(&req); err != nil {
		return h.mapError(c, apperrors.NewValidationError("invalid request body").
			WithCode(apperrors.CodeInvalidPayload))
	}
	if req.Field == "" {
		return h.mapError(c, apperrors.NewValidationError("field is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	record, err := h.engine.Increment(c.UserContext(), c.Params("projectID"), c.Params("collection"), c.Params("recordID"), req.Field, req.Delta)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(record)
}

// QueryRecords runs a filtered, sorted, paginated read over the collection.
func (h *Handler) QueryRecords(c *fiber.Ctx) error {
	opts, err := parseQueryOptions(c)
	if err != nil {
		return h.mapError(c, err)
	}

	result, err := h.engine.QueryRecords(c.UserContext(), c.Params("projectID"), c.Params("collection"), opts)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(result)
}

// SearchRecords is QueryRecords with a case-insensitive full-record term.
func (h *Handler) SearchRecords(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return h.mapError(c, apperrors.NewValidationError("q is required").
			WithCode(apperrors.CodeInvalidPayload))
	}

	opts, err := parseQueryOptions(c)
	if err != nil {
		return h.mapError(c, err)
	}

	result, err := h.engine.SearchRecords(c.UserContext(), c.Params("projectID"), c.Params("collection"), term, opts)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(result)
}

// CountRecords returns how many records match the (optional) filter.
func (h *Handler) CountRecords(c *fiber.Ctx) error {
	filter, err := model.ParseFilter(c.Query("filter"))
	if err != nil {
		return h.mapError(c, err)
	}

	count, err := h.engine.CountRecords(c.UserContext(), c.Params("projectID"), c.Params("collection"), filter)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// Keys returns the sorted record ids of the collection.
func (h *Handler) Keys(c *fiber.Ctx) error {
	keys, err := h.engine.Keys(c.UserContext(), c.Params("projectID"), c.Params("collection"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"keys": keys})
}

// Entries returns the full id/record pairs of the collection in id order.
func (h *Handler) Entries(c *fiber.Ctx) error {
	entries, err := h.engine.Entries(c.UserContext(), c.Params("projectID"), c.Params("collection"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Size returns the number of records in the collection.
func (h *Handler) Size(c *fiber.Ctx) error {
	size, err := h.engine.Size(c.UserContext(), c.Params("projectID"), c.Params("collection"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"size": size})
}

// Changes replays the collection's change feed after an optional resume
// token.
func (h *Handler) Changes(c *fiber.Ctx) error {
	events, err := h.engine.Changes(c.UserContext(), c.Params("projectID"), c.Params("collection"), c.Query("since"), c.QueryInt("limit", 0))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"changes": events})
}
