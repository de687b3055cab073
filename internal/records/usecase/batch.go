package usecase

import (
	"context"
	"fmt"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"
)

// Batch calls apply the same action across many records or ids with
// independent per-item outcomes: an item failure never aborts its siblings,
// and a batch with zero successes is still a successful call. Mutating
// batches hold the collection lock for their whole run and persist once at
// the end.

// BatchCreate inserts many records, creating the collection implicitly.
// Per-item failures are InvalidIdFormat and Conflict; conflicts are checked
// against the stored map and against earlier items of the same batch.
func (e *Engine) BatchCreate(ctx context.Context, projectID, collection string, docs []map[string]interface{}) (*model.BatchResult, error) {
	ref := model.NewCollectionRef(projectID, collection)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.EnsureCollection(ctx, projectID, collection, true); err != nil {
		return nil, err
	}
	records, err := e.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := model.NewBatchResult(len(docs))
	created := make([]model.Record, 0, len(docs))
	for _, data := range docs {
		record, err := e.buildRecord(records, data)
		if err != nil {
			result.Errors = append(result.Errors, batchError(rawID(data), err))
			continue
		}
		records[record.ID()] = record
		created = append(created, record)
		result.Results = append(result.Results, model.BatchItemResult{
			ID:     record.ID(),
			Status: model.BatchStatusSuccess,
			Record: record.Clone(),
		})
	}

	if len(created) > 0 {
		if err := e.persist(ctx, ref, records); err != nil {
			return nil, err
		}
		now := e.timestamp()
		for _, record := range created {
			e.publishChange(ctx, model.ChangeEvent{
				Type:       model.ChangeRecordCreated,
				ProjectID:  projectID,
				Collection: collection,
				RecordID:   record.ID(),
				Data:       record.Clone(),
				Timestamp:  now,
			})
		}
	}

	e.logger.Info("Batch create finished",
		"projectID", projectID, "collection", collection,
		"total", result.Total, "created", len(created), "failed", len(result.Errors))
	return result, nil
}

// BatchGet returns each requested record or a per-item NotFound error. No
// mutation, no locking.
func (e *Engine) BatchGet(ctx context.Context, projectID, collection string, ids []string) (*model.BatchResult, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return nil, err
	}

	result := model.NewBatchResult(len(ids))
	for _, id := range ids {
		record, ok := records[id]
		if !ok {
			result.Errors = append(result.Errors, model.BatchItemError{
				ID:      id,
				Code:    apperrors.CodeRecordNotFound,
				Message: fmt.Sprintf("record %q not found", id),
			})
			continue
		}
		result.Results = append(result.Results, model.BatchItemResult{
			ID:     id,
			Status: model.BatchStatusSuccess,
			Record: record.Clone(),
		})
	}
	return result, nil
}

// BatchUpdate shallow-merges each patch into its target record. Per-item
// failures are NotFound for an absent id and InvalidPayload for a patch that
// is not an object.
func (e *Engine) BatchUpdate(ctx context.Context, projectID, collection string, updates []model.BatchUpdate) (*model.BatchResult, error) {
	ref := model.NewCollectionRef(projectID, collection)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		return nil, err
	}
	records, err := e.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := model.NewBatchResult(len(updates))
	type change struct{ old, new model.Record }
	changes := make([]change, 0, len(updates))
	for _, update := range updates {
		if update.Patch == nil {
			result.Errors = append(result.Errors, model.BatchItemError{
				ID:      update.ID,
				Code:    apperrors.CodeInvalidPayload,
				Message: "patch must be an object",
			})
			continue
		}
		record, ok := records[update.ID]
		if !ok {
			result.Errors = append(result.Errors, model.BatchItemError{
				ID:      update.ID,
				Code:    apperrors.CodeRecordNotFound,
				Message: fmt.Sprintf("record %q not found", update.ID),
			})
			continue
		}
		old := record.Clone()
		mergePatch(record, update.Patch)
		record[model.FieldUpdatedAt] = model.FormatTimestamp(e.timestamp())
		changes = append(changes, change{old: old, new: record})
		result.Results = append(result.Results, model.BatchItemResult{
			ID:     update.ID,
			Status: model.BatchStatusSuccess,
			Record: record.Clone(),
		})
	}

	if len(changes) > 0 {
		if err := e.persist(ctx, ref, records); err != nil {
			return nil, err
		}
		now := e.timestamp()
		for _, ch := range changes {
			e.publishChange(ctx, model.ChangeEvent{
				Type:       model.ChangeRecordUpdated,
				ProjectID:  projectID,
				Collection: collection,
				RecordID:   ch.new.ID(),
				Data:       ch.new.Clone(),
				OldData:    ch.old,
				Timestamp:  now,
			})
		}
	}
	return result, nil
}

// BatchDelete removes each id if present. An absent id is a success with a
// "nothing to delete" annotation, keeping the whole call idempotent.
func (e *Engine) BatchDelete(ctx context.Context, projectID, collection string, ids []string) (*model.BatchResult, error) {
	ref := model.NewCollectionRef(projectID, collection)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		return nil, err
	}
	records, err := e.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := model.NewBatchResult(len(ids))
	removed := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		record, ok := records[id]
		if !ok {
			result.Results = append(result.Results, model.BatchItemResult{
				ID:      id,
				Status:  model.BatchStatusSuccess,
				Message: "nothing to delete",
			})
			continue
		}
		delete(records, id)
		removed = append(removed, record)
		result.Results = append(result.Results, model.BatchItemResult{
			ID:     id,
			Status: model.BatchStatusSuccess,
		})
	}

	if len(removed) > 0 {
		if err := e.persist(ctx, ref, records); err != nil {
			return nil, err
		}
		now := e.timestamp()
		for _, record := range removed {
			e.publishChange(ctx, model.ChangeEvent{
				Type:       model.ChangeRecordDeleted,
				ProjectID:  projectID,
				Collection: collection,
				RecordID:   record.ID(),
				OldData:    record,
				Timestamp:  now,
			})
		}
	}
	return result, nil
}

// batchError converts an operation error into a per-item error entry.
func batchError(id string, err error) model.BatchItemError {
	item := model.BatchItemError{
		ID:      id,
		Code:    apperrors.Code(err),
		Message: err.Error(),
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		item.Message = appErr.Message
		if detail, ok := appErr.Details["id"].(string); ok && item.ID == "" {
			item.ID = detail
		}
	}
	return item
}

// rawID extracts the caller-supplied id of a batch item for error reporting,
// before validation normalizes it.
func rawID(data map[string]interface{}) string {
	if id, ok := data[model.FieldID].(string); ok {
		return id
	}
	return ""
}
