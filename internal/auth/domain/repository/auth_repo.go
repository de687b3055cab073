package repository

import (
	"context"

	"recordstore/internal/auth/domain/model"
)

// AuthRepository persists user accounts and project API tokens.
type AuthRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)

	// SetGrant records the tier a user holds on a project; an empty tier
	// removes the grant.
	SetGrant(ctx context.Context, userID, projectID, tier string) error

	CreateAPIToken(ctx context.Context, token *model.APIToken) error
	GetAPITokenBySecretHash(ctx context.Context, secretHash string) (*model.APIToken, error)
	ListAPITokens(ctx context.Context, projectID string) ([]*model.APIToken, error)
	DeleteAPIToken(ctx context.Context, projectID, tokenID string) error
}
