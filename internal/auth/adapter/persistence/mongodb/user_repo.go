package mongodb

import (
	"context"
	"errors"
	"fmt"

	"recordstore/internal/auth/domain/model"
	"recordstore/internal/auth/domain/repository"
	apperrors "recordstore/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	apiTokensCollection = "api_tokens"
)

// MongoAuthRepository persists users and API tokens in the metadata database.
type MongoAuthRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

// NewMongoAuthRepository creates the repository and ensures its indexes.
func NewMongoAuthRepository(db *mongo.Database) (*MongoAuthRepository, error) {
	repo := &MongoAuthRepository{
		users:  db.Collection(usersCollection),
		tokens: db.Collection(apiTokensCollection),
	}

	ctx := context.Background()
	_, err := repo.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}
	_, err = repo.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "secretHash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token index: %w", err)
	}
	return repo, nil
}

var _ repository.AuthRepository = (*MongoAuthRepository)(nil)

// CreateUser inserts a new account; a duplicate email is a conflict.
func (r *MongoAuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError("email is already taken")
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail returns a user by email address.
func (r *MongoAuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID returns a user by id.
func (r *MongoAuthRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// SetGrant records the tier a user holds on a project; an empty tier removes
// the grant.
func (r *MongoAuthRepository) SetGrant(ctx context.Context, userID, projectID, tier string) error {
	field := "grants." + projectID
	update := bson.M{"$set": bson.M{field: tier}}
	if tier == "" {
		update = bson.M{"$unset": bson.M{field: ""}}
	}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to set grant: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CreateAPIToken inserts a new project API token.
func (r *MongoAuthRepository) CreateAPIToken(ctx context.Context, token *model.APIToken) error {
	_, err := r.tokens.InsertOne(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to insert api token: %w", err)
	}
	return nil
}

// GetAPITokenBySecretHash resolves a presented secret to its token entry.
func (r *MongoAuthRepository) GetAPITokenBySecretHash(ctx context.Context, secretHash string) (*model.APIToken, error) {
	var token model.APIToken
	err := r.tokens.FindOne(ctx, bson.M{"secretHash": secretHash}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api token: %w", err)
	}
	return &token, nil
}

// ListAPITokens lists the tokens of one project.
func (r *MongoAuthRepository) ListAPITokens(ctx context.Context, projectID string) ([]*model.APIToken, error) {
	cursor, err := r.tokens.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list api tokens: %w", err)
	}
	defer cursor.Close(ctx)

	tokens := []*model.APIToken{}
	for cursor.Next(ctx) {
		var token model.APIToken
		if err := cursor.Decode(&token); err != nil {
			return nil, fmt.Errorf("failed to decode api token: %w", err)
		}
		tokens = append(tokens, &token)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api tokens: %w", err)
	}
	return tokens, nil
}

// DeleteAPIToken removes one token of a project.
func (r *MongoAuthRepository) DeleteAPIToken(ctx context.Context, projectID, tokenID string) error {
	result, err := r.tokens.DeleteOne(ctx, bson.M{"_id": tokenID, "projectId": projectID})
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("api token %q", tokenID))
	}
	return nil
}
