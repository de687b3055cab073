package authclient

import (
	"context"

	authusecase "recordstore/internal/auth/usecase"
	"recordstore/internal/records/domain/client"
	"recordstore/internal/records/domain/model"
)

// Adapter bridges the auth module's usecase to the records module's
// AuthClient boundary, keeping the core free of auth internals.
type Adapter struct {
	auth authusecase.AuthUsecaseInterface
}

// NewAdapter wraps the auth usecase as an AuthClient.
func NewAdapter(auth authusecase.AuthUsecaseInterface) *Adapter {
	return &Adapter{auth: auth}
}

var _ client.AuthClient = (*Adapter)(nil)

// ValidateSession checks a session token and returns the user id.
func (a *Adapter) ValidateSession(ctx context.Context, token string) (string, error) {
	claims, err := a.auth.ValidateToken(ctx, token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ResolveUserPrincipal resolves the tier a user holds on a project.
func (a *Adapter) ResolveUserPrincipal(ctx context.Context, userID, projectID string) (model.Principal, error) {
	return a.auth.ResolveUserPrincipal(ctx, userID, projectID)
}

// ResolveAPIToken resolves an opaque project API token to its principal.
func (a *Adapter) ResolveAPIToken(ctx context.Context, secret string) (model.Principal, error) {
	return a.auth.ResolveAPIToken(ctx, secret)
}

// GrantOwner gives the user the full tier on a freshly created project.
func (a *Adapter) GrantOwner(ctx context.Context, userID, projectID string) error {
	return a.auth.GrantProject(ctx, userID, projectID, model.TierFull)
}
