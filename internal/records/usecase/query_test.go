package usecase_test

import (
	"context"
	"testing"

	"recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPeople(t *testing.T, f *engineFixture) {
	t.Helper()
	ctx := context.Background()
	f.seedProject("p1")
	people := []map[string]interface{}{
		{"id": "u1", "name": "ana", "age": float64(25), "city": "Lima"},
		{"id": "u2", "name": "bruno", "age": float64(31), "city": "Cusco"},
		{"id": "u3", "name": "carla", "age": float64(28), "city": "Lima"},
		{"id": "u4", "name": "diego", "age": float64(45), "city": "Trujillo"},
		{"id": "u5", "name": "elena", "age": float64(36), "city": "Lima"},
	}
	for _, person := range people {
		_, err := f.engine.CreateRecord(ctx, "p1", "people", person)
		require.NoError(t, err)
	}
}

func TestQueryRecords_FilterSortAndProject(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)

	result, err := f.engine.QueryRecords(context.Background(), "p1", "people", model.QueryOptions{
		Filter: model.Filter{"city": "Lima"},
		Sort:   &model.SortSpec{Field: "age", Direction: model.DirectionDesc},
		Fields: []string{"name"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "elena", result.Records[0]["name"])
	assert.Equal(t, "carla", result.Records[1]["name"])
	assert.Equal(t, "ana", result.Records[2]["name"])
	assert.NotContains(t, result.Records[0], "city")
}

func TestQueryRecords_PagesConcatenateToFullResult(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)
	ctx := context.Background()

	var collected []string
	for offset := 0; ; offset += 2 {
		page, err := f.engine.QueryRecords(ctx, "p1", "people", model.QueryOptions{
			Limit:  2,
			Offset: offset,
		})
		require.NoError(t, err)
		if len(page.Records) == 0 {
			break
		}
		for _, rec := range page.Records {
			collected = append(collected, rec.ID())
		}
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5"}, collected)
}

func TestQueryRecords_UnknownCollection(t *testing.T) {
	f := newEngineFixture()
	f.seedProject("p1")

	_, err := f.engine.QueryRecords(context.Background(), "p1", "ghost", model.QueryOptions{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCollectionNotFound, apperrors.Code(err))
}

func TestSearchRecords_CombinesWithFilter(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)

	result, err := f.engine.SearchRecords(context.Background(), "p1", "people", "lima", model.QueryOptions{
		Filter: model.Filter{"age": map[string]interface{}{"$gte": 28}},
	})
	require.NoError(t, err)

	// lima matches u1, u3, u5; the age filter keeps u3 and u5.
	assert.Equal(t, 2, result.Total)
}

func TestSearchRecords_DoesNotMutateCallerFilter(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)

	filter := model.Filter{"city": "Lima"}
	_, err := f.engine.SearchRecords(context.Background(), "p1", "people", "ana", model.QueryOptions{Filter: filter})
	require.NoError(t, err)
	assert.NotContains(t, filter, "$search")
}

func TestCountRecords(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)
	ctx := context.Background()

	count, err := f.engine.CountRecords(ctx, "p1", "people", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	count, err = f.engine.CountRecords(ctx, "p1", "people", model.Filter{"city": "Lima"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestKeysEntriesSize(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)
	ctx := context.Background()

	keys, err := f.engine.Keys(ctx, "p1", "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5"}, keys)

	entries, err := f.engine.Entries(ctx, "p1", "people")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "u1", entries[0].ID)
	assert.Equal(t, "ana", entries[0].Record["name"])

	size, err := f.engine.Size(ctx, "p1", "people")
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestChanges_LimitApplies(t *testing.T) {
	f := newEngineFixture()
	seedPeople(t, f)

	events, err := f.engine.Changes(context.Background(), "p1", "people", "", 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
