package mongodb

import (
	"context"
	"errors"
	"fmt"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/repository"
	apperrors "recordstore/internal/shared/errors"
	"recordstore/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const projectsCollection = "projects"

// ProjectRepository persists project metadata in the deployment-wide
// metadata database, embedded collection lists included.
type ProjectRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewProjectRepository creates a project repository on the metadata database.
func NewProjectRepository(db *mongo.Database, log logger.Logger) *ProjectRepository {
	return &ProjectRepository{
		collection: db.Collection(projectsCollection),
		logger:     log.WithComponent("project_repo"),
	}
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// CreateProject inserts a new project; a duplicate id is a conflict.
func (r *ProjectRepository) CreateProject(ctx context.Context, project *model.Project) error {
	_, err := r.collection.InsertOne(ctx, project)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError(fmt.Sprintf("project %q already exists", project.ID)).
			WithCode(apperrors.CodeProjectExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetProject returns the project metadata entry by id.
func (r *ProjectRepository) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var project model.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %q", projectID)).
			WithCode(apperrors.CodeProjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// ListProjectsByOwner returns every project the owner holds.
func (r *ProjectRepository) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*model.Project, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []*model.Project{}
	for cursor.Next(ctx) {
		var project model.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		projects = append(projects, &project)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes the metadata entry.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": projectID})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("project %q", projectID)).
			WithCode(apperrors.CodeProjectNotFound)
	}
	return nil
}

// AddCollection appends the collection entry, or refreshes updatedAt when the
// name is already listed.
func (r *ProjectRepository) AddCollection(ctx context.Context, projectID string, info model.CollectionInfo) error {
	// Refresh path first: the name is usually already listed.
	refreshed, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": projectID, "collections.name": info.Name},
		bson.M{"$set": bson.M{
			"collections.$.updatedAt": info.UpdatedAt,
			"updatedAt":               info.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to refresh collection metadata: %w", err)
	}
	if refreshed.MatchedCount > 0 {
		return nil
	}

	appended, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{
			"$push": bson.M{"collections": info},
			"$set":  bson.M{"updatedAt": info.UpdatedAt},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append collection metadata: %w", err)
	}
	if appended.MatchedCount == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("project %q", projectID)).
			WithCode(apperrors.CodeProjectNotFound)
	}
	return nil
}

// RemoveCollection drops the collection entry. Removing an absent name is a
// no-op.
func (r *ProjectRepository) RemoveCollection(ctx context.Context, projectID, name string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$pull": bson.M{"collections": bson.M{"name": name}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove collection metadata: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("project %q", projectID)).
			WithCode(apperrors.CodeProjectNotFound)
	}
	return nil
}
