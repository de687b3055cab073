package usecase

import (
	"context"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/service"
)

// QueryRecords runs the full read pipeline over one collection: filter,
// sort, slice, project. Reads are not serialized against writers; a
// concurrent mutation may or may not be visible.
func (e *Engine) QueryRecords(ctx context.Context, projectID, collection string, opts model.QueryOptions) (*model.QueryResult, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return nil, err
	}
	result := service.Run(records, opts)
	return &result, nil
}

// SearchRecords runs a case-insensitive free-text search over every
// string-valued field, combined by AND with any other filter conditions.
func (e *Engine) SearchRecords(ctx context.Context, projectID, collection, term string, opts model.QueryOptions) (*model.QueryResult, error) {
	filter := model.Filter{}
	for key, cond := range opts.Filter {
		filter[key] = cond
	}
	filter[model.KeySearch] = term
	opts.Filter = filter
	return e.QueryRecords(ctx, projectID, collection, opts)
}

// CountRecords returns the number of records matching the filter.
func (e *Engine) CountRecords(ctx context.Context, projectID, collection string, filter model.Filter) (int, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return 0, err
	}
	return len(service.FilterRecords(records, filter)), nil
}

// Keys returns every record id of the collection in ascending order.
func (e *Engine) Keys(ctx context.Context, projectID, collection string) ([]string, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return nil, err
	}
	return records.IDs(), nil
}

// Entries returns every (id, record) pair of the collection, ordered by id.
func (e *Engine) Entries(ctx context.Context, projectID, collection string) ([]model.Entry, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return nil, err
	}
	entries := make([]model.Entry, 0, len(records))
	for _, id := range records.IDs() {
		entries = append(entries, model.Entry{ID: id, Record: records[id].Clone()})
	}
	return entries, nil
}

// Size returns the number of records stored in the collection.
func (e *Engine) Size(ctx context.Context, projectID, collection string) (int, error) {
	records, err := e.loadExisting(ctx, projectID, collection)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Changes replays recent change events of the collection from the persisted
// change log, strictly after sinceToken.
func (e *Engine) Changes(ctx context.Context, projectID, collection, sinceToken string, limit int) ([]model.ChangeEvent, error) {
	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		return nil, err
	}
	if e.changeLog == nil {
		return []model.ChangeEvent{}, nil
	}
	return e.changeLog.Replay(ctx, model.NewCollectionRef(projectID, collection), sinceToken, limit)
}

// loadExisting loads the record map of a collection that must already be
// registered; collection-read operations fail with CollectionNotFound
// otherwise.
func (e *Engine) loadExisting(ctx context.Context, projectID, collection string) (model.RecordMap, error) {
	if err := e.EnsureCollection(ctx, projectID, collection, false); err != nil {
		return nil, err
	}
	return e.load(ctx, model.NewCollectionRef(projectID, collection))
}
