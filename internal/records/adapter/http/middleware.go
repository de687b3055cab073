package http

import (
	"strings"

	"recordstore/internal/records/domain/client"
	"recordstore/internal/records/domain/model"
	"recordstore/internal/shared/contextkeys"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals keys set by the access middleware.
const (
	LocalUserID    = "userID"
	LocalPrincipal = "principal"
)

// AccessMiddleware authenticates callers and resolves their permission tier
// for the addressed project. The core trusts the resolution; handlers only
// gate on tier categories.
type AccessMiddleware struct {
	client client.AuthClient
	logger logger.Logger
}

// NewAccessMiddleware creates the middleware over the auth collaborator.
func NewAccessMiddleware(authClient client.AuthClient, log logger.Logger) *AccessMiddleware {
	return &AccessMiddleware{
		client: authClient,
		logger: log.WithComponent("access"),
	}
}

// Authenticate accepts either a Bearer session token or an X-API-Token
// project credential. API tokens carry a complete principal already; session
// tokens yield a user id whose project tier ResolveProject fills in.
func (m *AccessMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if secret := c.Get("X-API-Token"); secret != "" {
			principal, err := m.client.ResolveAPIToken(ctx, secret)
			if err != nil {
				return unauthorized(c, "invalid API token")
			}
			c.Locals(LocalPrincipal, principal)
			c.Locals(LocalUserID, principal.UserID)
			c.SetUserContext(contextkeys.WithUserID(ctx, principal.UserID))
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c, "missing credentials")
		}
		userID, err := m.client.ValidateSession(ctx, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return unauthorized(c, "invalid session token")
		}
		c.Locals(LocalUserID, userID)
		c.SetUserContext(contextkeys.WithUserID(ctx, userID))
		return c.Next()
	}
}

// ResolveProject resolves the caller's principal for the :projectID route
// parameter. An API-token principal must already match the addressed
// project.
func (m *AccessMiddleware) ResolveProject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Params("projectID")
		if projectID == "" {
			return respondError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "missing project id")
		}

		if principal, ok := PrincipalFromCtx(c); ok {
			// API token path: scope is fixed at mint time.
			if principal.ProjectID != projectID {
				return forbidden(c, "token is not scoped to this project")
			}
			m.stash(c, principal)
			return c.Next()
		}

		userID, ok := UserIDFromCtx(c)
		if !ok {
			return unauthorized(c, "missing credentials")
		}
		principal, err := m.client.ResolveUserPrincipal(c.UserContext(), userID, projectID)
		if err != nil {
			m.logger.Error("Failed to resolve principal", "userID", userID, "projectID", projectID, "error", err)
			return unauthorized(c, "could not resolve project access")
		}
		m.stash(c, principal)
		return c.Next()
	}
}

func (m *AccessMiddleware) stash(c *fiber.Ctx, principal model.Principal) {
	c.Locals(LocalPrincipal, principal)
	ctx := contextkeys.WithProjectID(c.UserContext(), principal.ProjectID)
	ctx = contextkeys.WithTier(ctx, string(principal.Tier))
	c.SetUserContext(ctx)
}

// RequireTier gates a route on the operation's category. ResolveProject must
// have run first.
func (m *AccessMiddleware) RequireTier(category model.Category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return unauthorized(c, "missing credentials")
		}
		if !principal.Tier.Covers(category) {
			return forbidden(c, "permission tier does not cover this operation")
		}
		return c.Next()
	}
}

// PrincipalFromCtx returns the resolved principal stored by the middleware.
func PrincipalFromCtx(c *fiber.Ctx) (model.Principal, bool) {
	principal, ok := c.Locals(LocalPrincipal).(model.Principal)
	return principal, ok
}

// UserIDFromCtx returns the authenticated user id stored by the middleware.
func UserIDFromCtx(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(LocalUserID).(string)
	return userID, ok && userID != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return respondError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func forbidden(c *fiber.Ctx, message string) error {
	return respondError(c, fiber.StatusForbidden, "FORBIDDEN", message)
}
