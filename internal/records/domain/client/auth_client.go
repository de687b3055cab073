package client

import (
	"context"

	"recordstore/internal/records/domain/model"
)

// AuthClient is the boundary to the authentication/authorization
// collaborator. The core never re-derives permissions: it receives a resolved
// principal and only checks that the tier covers the operation's category.
type AuthClient interface {
	// ValidateSession checks a bearer session token and returns the user id
	// it belongs to.
	ValidateSession(ctx context.Context, token string) (string, error)

	// ResolveUserPrincipal resolves the tier a user holds on a project.
	ResolveUserPrincipal(ctx context.Context, userID, projectID string) (model.Principal, error)

	// ResolveAPIToken resolves an opaque project API token to its principal.
	ResolveAPIToken(ctx context.Context, secret string) (model.Principal, error)

	// GrantOwner gives a user the full tier on a project. Called once when a
	// project is created.
	GrantOwner(ctx context.Context, userID, projectID string) error
}
