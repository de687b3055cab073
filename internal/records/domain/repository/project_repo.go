package repository

import (
	"context"

	"recordstore/internal/records/domain/model"
)

// ProjectRepository persists project metadata, including the embedded
// collection lists the registry keeps in lockstep with its cache.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]*model.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	// AddCollection appends a collection entry to the project's metadata.
	// Adding an already-listed name refreshes its updatedAt timestamp.
	AddCollection(ctx context.Context, projectID string, info model.CollectionInfo) error

	// RemoveCollection drops a collection entry from the project's metadata.
	// Removing an absent name is a no-op.
	RemoveCollection(ctx context.Context, projectID, name string) error
}
