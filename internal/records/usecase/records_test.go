package usecase_test

import (
	"context"
	"testing"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecord_GeneratesIDAndStampsTimestamps(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	record, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"title": "comprar pan"})
	require.NoError(t, err)

	id := record.ID()
	assert.True(t, model.ValidID(id))
	assert.Equal(t, "comprar pan", record["title"])
	assert.Equal(t, record[model.FieldCreatedAt], record[model.FieldUpdatedAt])
	assert.Len(t, record[model.FieldCreatedAt], 24)
}

func TestCreateRecord_ImplicitCollectionCreation(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"title": "x"})
	require.NoError(t, err)

	collections, err := f.engine.ListCollections(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "tasks", collections[0].Name)
}

func TestCreateRecord_SuppliedID(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	record, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "task-1", "title": "x"})
	require.NoError(t, err)
	assert.Equal(t, "task-1", record.ID())
}

func TestCreateRecord_DuplicateID(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "task-1"})
	require.NoError(t, err)

	_, err = f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "task-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, apperrors.CodeDuplicateRecordID, apperrors.Code(err))
}

func TestCreateRecord_InvalidIDFormat(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "con espacios"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidIDFormat, apperrors.Code(err))

	_, err = f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": 42})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidIDFormat, apperrors.Code(err))
}

func TestGetRecord_NotFoundVsFindRecord(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "t1"})
	require.NoError(t, err)

	// GetRecord on an absent id is a structured error.
	_, err = f.engine.GetRecord(ctx, "p1", "tasks", "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecordNotFound, apperrors.Code(err))

	// FindRecord on the same id is a clean empty result.
	record, err := f.engine.FindRecord(ctx, "p1", "tasks", "nope")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestGetRecord_UnknownCollection(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")

	_, err := f.engine.GetRecord(context.Background(), "p1", "ghost", "t1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCollectionNotFound, apperrors.Code(err))
}

func TestUpdateRecord_MergesAndPreservesUnpatchedFields(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	created, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{
		"id": "t1", "title": "original", "done": false,
	})
	require.NoError(t, err)

	updated, err := f.engine.UpdateRecord(ctx, "p1", "tasks", "t1", map[string]interface{}{"done": true})
	require.NoError(t, err)

	assert.Equal(t, "original", updated["title"])
	assert.Equal(t, true, updated["done"])
	assert.Equal(t, created[model.FieldCreatedAt], updated[model.FieldCreatedAt])
	assert.Greater(t, updated[model.FieldUpdatedAt].(string), created[model.FieldUpdatedAt].(string))
}

func TestUpdateRecord_IgnoresEngineOwnedFields(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	created, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "t1"})
	require.NoError(t, err)

	updated, err := f.engine.UpdateRecord(ctx, "p1", "tasks", "t1", map[string]interface{}{
		"id":        "hijacked",
		"createdAt": "1999-01-01T00:00:00.000Z",
		"note":      "kept",
	})
	require.NoError(t, err)

	assert.Equal(t, "t1", updated.ID())
	assert.Equal(t, created[model.FieldCreatedAt], updated[model.FieldCreatedAt])
	assert.Equal(t, "kept", updated["note"])
}

func TestUpdateRecord_NilPatch(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")

	_, err := f.engine.UpdateRecord(context.Background(), "p1", "tasks", "t1", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidPayload, apperrors.Code(err))
}

func TestDeleteRecord_Idempotent(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "t1"})
	require.NoError(t, err)

	deleted, err := f.engine.DeleteRecord(ctx, "p1", "tasks", "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete: success, nothing removed.
	deleted, err = f.engine.DeleteRecord(ctx, "p1", "tasks", "t1")
	require.NoError(t, err)
	assert.False(t, deleted)

	// Missing collection is also a clean no-op.
	deleted, err = f.engine.DeleteRecord(ctx, "p1", "ghost", "t1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestIncrement_AutoCreatesNestedField(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "stats", map[string]interface{}{"id": "s1"})
	require.NoError(t, err)

	record, err := f.engine.Increment(ctx, "p1", "stats", "s1", "counters.views", 3)
	require.NoError(t, err)

	counters := record["counters"].(map[string]interface{})
	assert.Equal(t, float64(3), counters["views"])

	// Increment again and decrement via a negative delta.
	record, err = f.engine.Increment(ctx, "p1", "stats", "s1", "counters.views", -1)
	require.NoError(t, err)
	assert.Equal(t, float64(2), record["counters"].(map[string]interface{})["views"])
}

func TestIncrement_NonNumericField(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "stats", map[string]interface{}{"id": "s1", "name": "texto"})
	require.NoError(t, err)

	_, err = f.engine.Increment(ctx, "p1", "stats", "s1", "name", 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidField, apperrors.Code(err))

	// A non-object intermediate is just as invalid.
	_, err = f.engine.Increment(ctx, "p1", "stats", "s1", "name.sub", 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidField, apperrors.Code(err))
}

func TestMutations_PublishChangeEventsToLog(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	_, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "t1"})
	require.NoError(t, err)
	_, err = f.engine.UpdateRecord(ctx, "p1", "tasks", "t1", map[string]interface{}{"done": true})
	require.NoError(t, err)
	_, err = f.engine.DeleteRecord(ctx, "p1", "tasks", "t1")
	require.NoError(t, err)

	events, err := f.engine.Changes(ctx, "p1", "tasks", "", 0)
	require.NoError(t, err)
	// collection_created + created + updated + deleted
	require.Len(t, events, 4)
	assert.Equal(t, model.ChangeCollectionCreated, events[0].Type)
	assert.Equal(t, model.ChangeRecordCreated, events[1].Type)
	assert.Equal(t, model.ChangeRecordUpdated, events[2].Type)
	assert.Equal(t, model.ChangeRecordDeleted, events[3].Type)

	// Resume strictly after the second event.
	tail, err := f.engine.Changes(ctx, "p1", "tasks", events[1].ResumeToken, 0)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, model.ChangeRecordUpdated, tail[0].Type)
}

func TestCreateRecord_ResultIsACopy(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")
	ctx := context.Background()

	record, err := f.engine.CreateRecord(ctx, "p1", "tasks", map[string]interface{}{"id": "t1", "title": "x"})
	require.NoError(t, err)

	record["title"] = "mutated by caller"

	stored, err := f.engine.GetRecord(ctx, "p1", "tasks", "t1")
	require.NoError(t, err)
	assert.Equal(t, "x", stored["title"])
}
