package http

import (
	"errors"
	"strings"

	"recordstore/internal/records/adapter/realtime"
	"recordstore/internal/records/domain/client"
	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/usecase"
	apperrors "recordstore/internal/shared/errors"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Handler is the REST surface over the record engine. It maps core outcomes
// to protocol responses and nothing more; every decision lives in the engine.
type Handler struct {
	engine     usecase.EngineInterface
	access     *AccessMiddleware
	auth       client.AuthClient
	dispatcher *realtime.Dispatcher
	logger     logger.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(engine usecase.EngineInterface, access *AccessMiddleware, authClient client.AuthClient, dispatcher *realtime.Dispatcher, log logger.Logger) *Handler {
	return &Handler{
		engine:     engine,
		access:     access,
		auth:       authClient,
		dispatcher: dispatcher,
		logger:     log.WithComponent("http"),
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api/v1")
	authenticate := h.access.Authenticate()
	requireRead := h.access.RequireTier(model.CategoryRead)
	requireWrite := h.access.RequireTier(model.CategoryWrite)
	requireAdmin := h.access.RequireTier(model.CategoryAdmin)

	projects := api.Group("/projects", authenticate)
	projects.Post("/", h.CreateProject)
	projects.Get("/", h.ListProjects)

	project := projects.Group("/:projectID", h.access.ResolveProject())
	project.Get("/", requireRead, h.GetProject)
	project.Delete("/", requireAdmin, h.DeleteProject)

	collections := project.Group("/collections")
	collections.Get("/", requireRead, h.ListCollections)
	collections.Post("/", requireWrite, h.CreateCollection)

	collection := collections.Group("/:collection")
	collection.Delete("/", requireAdmin, h.DeleteCollection)
	collection.Get("/search", requireRead, h.SearchRecords)
	collection.Get("/count", requireRead, h.CountRecords)
	collection.Get("/keys", requireRead, h.Keys)
	collection.Get("/entries", requireRead, h.Entries)
	collection.Get("/size", requireRead, h.Size)
	collection.Get("/changes", requireRead, h.Changes)

	records := collection.Group("/records")
	records.Post("/", requireWrite, h.CreateRecord)
	records.Get("/", requireRead, h.QueryRecords)
	records.Get("/:recordID", requireRead, h.GetRecord)
	records.Patch("/:recordID", requireWrite, h.UpdateRecord)
	records.Delete("/:recordID", requireWrite, h.DeleteRecord)
	records.Post("/:recordID/increment", requireWrite, h.IncrementField)

	batch := collection.Group("/batch")
	batch.Post("/create", requireWrite, h.BatchCreate)
	batch.Post("/get", requireRead, h.BatchGet)
	batch.Post("/update", requireWrite, h.BatchUpdate)
	batch.Post("/delete", requireWrite, h.BatchDelete)
}

// parseQueryOptions extracts the wire-form query parameters shared by the
// read endpoints.
func parseQueryOptions(c *fiber.Ctx) (model.QueryOptions, error) {
	opts := model.QueryOptions{}

	filter, err := model.ParseFilter(c.Query("filter"))
	if err != nil {
		return opts, err
	}
	opts.Filter = filter

	sortSpec, err := model.ParseSort(c.Query("sort"))
	if err != nil {
		return opts, err
	}
	opts.Sort = sortSpec

	opts.Limit = c.QueryInt("limit", 0)
	opts.Offset = c.QueryInt("offset", 0)

	if fields := c.Query("fields"); fields != "" {
		for _, field := range strings.Split(fields, ",") {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				opts.Fields = append(opts.Fields, trimmed)
			}
		}
	}
	return opts, nil
}

// mapError translates a core error into its protocol response.
func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		payload := fiber.Map{
			"error":   appErr.Message,
			"type":    appErr.Type,
			"code":    appErr.Code,
			"details": appErr.Details,
		}
		if len(appErr.Details) == 0 {
			delete(payload, "details")
		}
		return c.Status(appErr.HTTPCode).JSON(payload)
	}

	h.logger.Error("Unhandled error", "path", c.Path(), "error", err)
	return respondError(c, fiber.StatusInternalServerError, "INTERNAL", "internal server error")
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
