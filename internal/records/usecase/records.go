package usecase

import (
	"context"
	"fmt"
	"strings"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"
)

// CreateRecord inserts one record, creating the collection implicitly if it
// does not exist yet. When data carries no id one is generated; a supplied id
// must match the id charset and must not collide with an existing record.
func (e *Engine) CreateRecord(ctx context.Context, projectID, collection string, data map[string]interface{}) (model.Record, error) {
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

	record, err := e.buildRecord(records, data)
	if err != nil {
		return nil, err
	}
	records[record.ID()] = record

	if err := e.persist(ctx, ref, records); err != nil {
		return nil, err
	}

	e.logger.Info("Record created", "projectID", projectID, "collection", collection, "recordID", record.ID())
	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeRecordCreated,
		ProjectID:  projectID,
		Collection: collection,
		RecordID:   record.ID(),
		Data:       record.Clone(),
		Timestamp:  e.timestamp(),
	})
	return record.Clone(), nil
}

// GetRecord returns the record or a structured RecordNotFound error. Callers
// that prefer an empty result use FindRecord.
func (e *Engine) GetRecord(ctx context.Context, projectID, collection, recordID string) (model.Record, error) {
	record, err := e.FindRecord(ctx, projectID, collection, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("record %q", recordID)).
			WithCode(apperrors.CodeRecordNotFound)
	}
	return record, nil
}

// FindRecord returns (nil, nil) for an absent record id. The collection
// itself must exist.
func (e *Engine) FindRecord(ctx context.Context, projectID, collection, recordID string) (model.Record, error) {
	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		return nil, err
	}
	records, err := e.load(ctx, model.NewCollectionRef(projectID, collection))
	if err != nil {
		return nil, err
	}
	record, ok := records[recordID]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

// UpdateRecord shallow-merges patch fields into the existing record at the
// top level: patch keys overwrite, unspecified keys persist. Engine-owned
// fields in the patch are ignored; createdAt is preserved and updatedAt
// restamped.
func (e *Engine) UpdateRecord(ctx context.Context, projectID, collection, recordID string, patch map[string]interface{}) (model.Record, error) {
	if patch == nil {
		return nil, apperrors.NewValidationError("patch must be an object").
			WithCode(apperrors.CodeInvalidPayload)
	}

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
	record, ok := records[recordID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("record %q", recordID)).
			WithCode(apperrors.CodeRecordNotFound)
	}

	old := record.Clone()
	mergePatch(record, patch)
	record[model.FieldUpdatedAt] = model.FormatTimestamp(e.timestamp())

	if err := e.persist(ctx, ref, records); err != nil {
		return nil, err
	}

	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeRecordUpdated,
		ProjectID:  projectID,
		Collection: collection,
		RecordID:   recordID,
		Data:       record.Clone(),
		OldData:    old,
		Timestamp:  e.timestamp(),
	})
	return record.Clone(), nil
}

// DeleteRecord removes a record if present. Deleting an absent id is a
// successful no-op; the boolean reports whether anything was removed. A
// missing collection also reports false rather than an error, keeping the
// operation idempotent end to end.
func (e *Engine) DeleteRecord(ctx context.Context, projectID, collection, recordID string) (bool, error) {
	ref := model.NewCollectionRef(projectID, collection)
	release, err := e.locker.Acquire(ctx, ref.ResourceKey())
	if err != nil {
		return false, err
	}
	defer release()

	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	records, err := e.load(ctx, ref)
	if err != nil {
		return false, err
	}
	record, ok := records[recordID]
	if !ok {
		return false, nil
	}
	delete(records, recordID)

	if err := e.persist(ctx, ref, records); err != nil {
		return false, err
	}

	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeRecordDeleted,
		ProjectID:  projectID,
		Collection: collection,
		RecordID:   recordID,
		OldData:    record,
		Timestamp:  e.timestamp(),
	})
	return true, nil
}

// Increment applies a numeric delta to a possibly dot-nested field. The
// policy is auto-create: missing nested containers are created as objects and
// an absent leaf counts as zero before the delta. An existing non-numeric value
// anywhere on the path is an InvalidField validation error. Decrement is an
// increment with a negated delta.
func (e *Engine) Increment(ctx context.Context, projectID, collection, recordID, field string, delta float64) (model.Record, error) {
	if field == "" {
		return nil, apperrors.NewValidationError("field path must not be empty").
			WithCode(apperrors.CodeInvalidField)
	}

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
	record, ok := records[recordID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("record %q", recordID)).
			WithCode(apperrors.CodeRecordNotFound)
	}

	old := record.Clone()
	if err := applyDelta(record, field, delta); err != nil {
		return nil, err
	}
	record[model.FieldUpdatedAt] = model.FormatTimestamp(e.timestamp())

	if err := e.persist(ctx, ref, records); err != nil {
		return nil, err
	}

	e.publishChange(ctx, model.ChangeEvent{
		Type:       model.ChangeRecordUpdated,
		ProjectID:  projectID,
		Collection: collection,
		RecordID:   recordID,
		Data:       record.Clone(),
		OldData:    old,
		Timestamp:  e.timestamp(),
	})
	return record.Clone(), nil
}

// load wraps the storage engine read with the error taxonomy.
func (e *Engine) load(ctx context.Context, ref model.CollectionRef) (model.RecordMap, error) {
	records, err := e.store.Load(ctx, ref)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load collection container", err)
	}
	if records == nil {
		records = model.RecordMap{}
	}
	return records, nil
}

// persist wraps the storage engine write with the error taxonomy.
func (e *Engine) persist(ctx context.Context, ref model.CollectionRef, records model.RecordMap) error {
	if err := e.store.Persist(ctx, ref, records); err != nil {
		return apperrors.NewStorageError("failed to persist collection container", err)
	}
	return nil
}

// buildRecord turns raw caller data into a stamped record, resolving and
// validating the id against the current record map.
func (e *Engine) buildRecord(records model.RecordMap, data map[string]interface{}) (model.Record, error) {
	record := model.Record(data).Clone()
	if record == nil {
		record = model.Record{}
	}

	id := record.ID()
	if id == "" {
		if _, present := record[model.FieldID]; present {
			// id key exists but is not a string
			return nil, apperrors.NewValidationError("record id must be a string").
				WithCode(apperrors.CodeInvalidIDFormat)
		}
		id = model.NewID()
	}
	if !model.ValidID(id) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("record id %q has invalid format", id)).
			WithCode(apperrors.CodeInvalidIDFormat).
			WithDetail("id", id)
	}
	if _, exists := records[id]; exists {
		return nil, apperrors.NewConflictError(fmt.Sprintf("record %q already exists", id)).
			WithCode(apperrors.CodeDuplicateRecordID).
			WithDetail("id", id)
	}

	now := model.FormatTimestamp(e.timestamp())
	record[model.FieldID] = id
	record[model.FieldCreatedAt] = now
	record[model.FieldUpdatedAt] = now
	return record, nil
}

// mergePatch overwrites top-level fields from patch, leaving engine-owned
// fields alone.
func mergePatch(record model.Record, patch map[string]interface{}) {
	for key, value := range patch {
		switch key {
		case model.FieldID, model.FieldCreatedAt, model.FieldUpdatedAt:
			continue
		}
		record[key] = model.CloneValue(value)
	}
}

// applyDelta walks the dot path, auto-creating missing intermediates, and
// adds delta to the numeric leaf (zero when absent).
func applyDelta(record model.Record, path string, delta float64) error {
	segments := strings.Split(path, ".")
	current := map[string]interface{}(record)
	for _, seg := range segments[:len(segments)-1] {
		next, present := current[seg]
		if !present {
			created := map[string]interface{}{}
			current[seg] = created
			current = created
			continue
		}
		obj, ok := next.(map[string]interface{})
		if !ok {
			return apperrors.NewValidationError(fmt.Sprintf("field %q is not an object", seg)).
				WithCode(apperrors.CodeInvalidField).
				WithDetail("field", path)
		}
		current = obj
	}

	leaf := segments[len(segments)-1]
	base := 0.0
	if existing, present := current[leaf]; present {
		num, ok := numericValue(existing)
		if !ok {
			return apperrors.NewValidationError(fmt.Sprintf("field %q is not numeric", path)).
				WithCode(apperrors.CodeInvalidField).
				WithDetail("field", path)
		}
		base = num
	}
	current[leaf] = base + delta
	return nil
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
