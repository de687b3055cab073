package usecase

import (
	"context"
	"fmt"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"
)

// EnsureCollection makes sure (projectId, name) is a registered collection.
// The lookup order is: in-memory cache, storage probe, then lazy creation
// when createIfMissing is set. Cache membership and persisted project
// metadata move together on every path that changes registration state.
//
// Callers on write paths invoke this while holding the collection's resource
// lock, so a concurrent create of the same collection cannot interleave
// between the storage probe and the metadata append.
func (e *Engine) EnsureCollection(ctx context.Context, projectID, name string, createIfMissing bool) error {
	if !model.ValidCollectionName(name) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid collection name %q", name)).
			WithCode(apperrors.CodeInvalidIDFormat)
	}

	if e.cacheHas(projectID, name) {
		return nil
	}

	ref := model.NewCollectionRef(projectID, name)
	exists, err := e.store.Exists(ctx, ref)
	if err != nil {
		return apperrors.NewStorageError("failed to probe collection container", err)
	}
	if exists {
		// Container already on disk: warm the cache and converge metadata in
		// case a previous registration was interrupted.
		if err := e.syncMetadata(ctx, projectID, name); err != nil {
			return err
		}
		e.cacheAdd(projectID, name)
		return nil
	}

	if !createIfMissing {
		return apperrors.NewNotFoundError(fmt.Sprintf("collection %q", name)).
			WithCode(apperrors.CodeCollectionNotFound)
	}

	if err := e.store.Persist(ctx, ref, model.RecordMap{}); err != nil {
		return apperrors.NewStorageError("failed to create collection container", err)
	}
	if err := e.syncMetadata(ctx, projectID, name); err != nil {
		return err
	}
	e.cacheAdd(projectID, name)

	e.logger.Info("Collection created", "projectID", projectID, "collection", name)
	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeCollectionCreated,
		ProjectID:  projectID,
		Collection: name,
		Timestamp:  e.timestamp(),
	})
	return nil
}

// syncMetadata appends (or refreshes) the collection entry in the project's
// persisted metadata.
func (e *Engine) syncMetadata(ctx context.Context, projectID, name string) error {
	now := e.timestamp()
	err := e.projects.AddCollection(ctx, projectID, model.CollectionInfo{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return apperrors.WrapError(err, "failed to sync collection metadata")
	}
	return nil
}

func (e *Engine) cacheHas(projectID, name string) bool {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	_, ok := e.registry[projectID][name]
	return ok
}

func (e *Engine) cacheAdd(projectID, name string) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	set, ok := e.registry[projectID]
	if !ok {
		set = make(map[string]struct{})
		e.registry[projectID] = set
	}
	set[name] = struct{}{}
}

// forgetCollection removes the cache entry; used on collection deletion so
// cache and metadata stay in lockstep.
func (e *Engine) forgetCollection(projectID, name string) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	if set, ok := e.registry[projectID]; ok {
		delete(set, name)
		if len(set) == 0 {
			delete(e.registry, projectID)
		}
	}
}

// forgetProject drops the whole cache slice of a project.
func (e *Engine) forgetProject(projectID string) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	delete(e.registry, projectID)
}
