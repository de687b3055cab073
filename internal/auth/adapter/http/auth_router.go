package http

import (
	"errors"

	"recordstore/internal/auth/usecase"
	recordshttp "recordstore/internal/records/adapter/http"
	recordsmodel "recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves registration, sessions and project API token
// management.
type AuthHandler struct {
	usecase usecase.AuthUsecaseInterface
	logger  logger.Logger
}

// NewAuthHandler creates the auth HTTP handler.
func NewAuthHandler(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		usecase: uc,
		logger:  log.WithComponent("auth_http"),
	}
}

// RegisterRoutes mounts the auth surface. Protected routes reuse the records
// access middleware so both modules resolve identity the same way.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, access *recordshttp.AccessMiddleware) {
	auth := router.Group("/api/v1/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.RefreshToken)
	auth.Get("/me", access.Authenticate(), h.GetCurrentUser)

	// Token management lives under the project it scopes; only holders of
	// the full tier may mint or revoke.
	tokens := router.Group("/api/v1/projects/:projectID/tokens",
		access.Authenticate(),
		access.ResolveProject(),
		access.RequireTier(recordsmodel.CategoryAdmin),
	)
	tokens.Post("/", h.CreateAPIToken)
	tokens.Get("/", h.ListAPITokens)
	tokens.Delete("/:tokenID", h.RevokeAPIToken)
}

// Register creates an account and returns a session token.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, token, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email is already registered"})
		case errors.Is(err, usecase.ErrInvalidEmailFormat), errors.Is(err, usecase.ErrWeakPassword):
			return badRequest(c, err.Error())
		default:
			h.logger.Error("Registration failed", "email", req.Email, "error", err)
			return internalError(c)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":        user,
		"accessToken": token,
	})
}

// Login verifies credentials and returns a session token. Unknown email and
// wrong password answer identically.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, token, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
		}
		h.logger.Error("Login failed", "email", req.Email, "error", err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"user":        user,
		"accessToken": token,
	})
}

// RefreshToken exchanges a still-valid session token for a fresh one.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "token is required")
	}

	token, err := h.usecase.RefreshToken(c.UserContext(), req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
	}
	return c.JSON(fiber.Map{"accessToken": token})
}

// GetCurrentUser returns the authenticated account, grants included.
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := recordshttp.UserIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing credentials"})
	}

	user, err := h.usecase.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(user)
}

type createTokenRequest struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// CreateAPIToken mints a project-scoped token. The secret appears in this
// response and nowhere else.
func (h *AuthHandler) CreateAPIToken(c *fiber.Ctx) error {
	var req createTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tier, ok := recordsmodel.ParseTier(req.Tier)
	if !ok || tier == recordsmodel.TierNone {
		return badRequest(c, "tier must be one of: read, write, full")
	}

	token, secret, err := h.usecase.CreateAPIToken(c.UserContext(), c.Params("projectID"), req.Name, tier)
	if err != nil {
		h.logger.Error("Failed to create API token", "projectID", c.Params("projectID"), "error", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":  token,
		"secret": secret,
	})
}

// ListAPITokens lists the project's tokens without their secrets.
func (h *AuthHandler) ListAPITokens(c *fiber.Ctx) error {
	tokens, err := h.usecase.ListAPITokens(c.UserContext(), c.Params("projectID"))
	if err != nil {
		h.logger.Error("Failed to list API tokens", "projectID", c.Params("projectID"), "error", err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{"tokens": tokens})
}

// RevokeAPIToken deletes a token; requests carrying it fail from then on.
func (h *AuthHandler) RevokeAPIToken(c *fiber.Ctx) error {
	err := h.usecase.RevokeAPIToken(c.UserContext(), c.Params("projectID"), c.Params("tokenID"))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
		}
		h.logger.Error("Failed to revoke API token", "projectID", c.Params("projectID"), "error", err)
		return internalError(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
