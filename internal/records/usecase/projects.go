package usecase

import (
	"context"
	"fmt"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"
)

// CreateProject registers a new project in the metadata database with the
// caller as owner.
func (e *Engine) CreateProject(ctx context.Context, projectID, name, ownerID string) (*model.Project, error) {
	if !model.ValidID(projectID) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid project id %q", projectID)).
			WithCode(apperrors.CodeInvalidIDFormat)
	}
	if name == "" {
		name = projectID
	}

	now := e.timestamp()
	project := &model.Project{
		ID:          projectID,
		Name:        name,
		OwnerID:     ownerID,
		Collections: []model.CollectionInfo{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.projects.CreateProject(ctx, project); err != nil {
		return nil, apperrors.WrapError(err, "failed to create project")
	}

	e.logger.Info("Project created", "projectID", projectID, "ownerID", ownerID)
	return project, nil
}

// GetProject returns the project metadata entry.
func (e *Engine) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to get project")
	}
	return project, nil
}

// ListProjects returns every project the owner holds.
func (e *Engine) ListProjects(ctx context.Context, ownerID string) ([]*model.Project, error) {
	projects, err := e.projects.ListProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to list projects")
	}
	return projects, nil
}

// DeleteProject wipes every container of the project, removes the metadata
// entry and forgets the registry slice. Destructive; requires the full tier
// at the transport boundary.
func (e *Engine) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := e.projects.GetProject(ctx, projectID); err != nil {
		return apperrors.WrapError(err, "failed to resolve project")
	}
	if err := e.store.DropProject(ctx, projectID); err != nil {
		return apperrors.NewStorageError("failed to drop project containers", err)
	}
	if err := e.projects.DeleteProject(ctx, projectID); err != nil {
		return apperrors.WrapError(err, "failed to delete project metadata")
	}
	e.forgetProject(projectID)

	e.logger.Info("Project deleted", "projectID", projectID)
	return nil
}

// CreateCollection explicitly registers a collection, persisting an empty
// container when none exists yet.
func (e *Engine) CreateCollection(ctx context.Context, projectID, name string) error {
	ref := model.NewCollectionRef(projectID, name)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return err
	}
	defer release()
	return e.EnsureCollection(ctx, projectID, name, true)
}

// ListCollections lists the project's registered collections from its
// persisted metadata.
func (e *Engine) ListCollections(ctx context.Context, projectID string) ([]model.CollectionInfo, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to get project")
	}
	return project.Collections, nil
}

// DeleteCollection wipes the collection's data and deregisters it from both
// the cache and the persisted metadata.
func (e *Engine) DeleteCollection(ctx context.Context, projectID, name string) error {
	ref := model.NewCollectionRef(projectID, name)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return err
	}
	defer release()

	if err := e.EnsureCollection(ctx, projectID, name, false); err != nil {
		return err
	}
	if err := e.store.Drop(ctx, ref); err != nil {
		return apperrors.NewStorageError("failed to drop collection container", err)
	}
	if err := e.projects.RemoveCollection(ctx, projectID, name); err != nil {
		return apperrors.WrapError(err, "failed to deregister collection")
	}
	e.forgetCollection(projectID, name)

	e.logger.Info("Collection deleted", "projectID", projectID, "collection", name)
	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeCollectionDeleted,
		ProjectID:  projectID,
		Collection: name,
		Timestamp:  e.timestamp(),
	})
	return nil
}
