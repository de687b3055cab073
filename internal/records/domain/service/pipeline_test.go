package service_test

import (
	"testing"

	"recordstore/internal/records/domain/model"
	. "recordstore/internal/records/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() model.RecordMap {
	return model.RecordMap{
		"a": {"id": "a", "name": "zulema", "age": float64(40)},
		"b": {"id": "b", "name": "ana", "age": float64(25)},
		"c": {"id": "c", "name": "mario", "age": float64(31)},
		"d": {"id": "d", "name": "luis"}, // sin edad
	}
}

func ids(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec[model.FieldID].(string))
	}
	return out
}

func TestFilterRecords_DefaultOrderIsAscendingID(t *testing.T) {
	result := FilterRecords(testRecords(), nil)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(result))
}

func TestFilterRecords_AppliesFilter(t *testing.T) {
	filter := model.Filter{"age": map[string]interface{}{"$gte": 30}}
	result := FilterRecords(testRecords(), filter)
	assert.Equal(t, []string{"a", "c"}, ids(result))
}

func TestSortRecords_Ascending(t *testing.T) {
	records := FilterRecords(testRecords(), nil)
	SortRecords(records, &model.SortSpec{Field: "name", Direction: model.DirectionAsc})
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(records))
}

func TestSortRecords_Descending(t *testing.T) {
	records := FilterRecords(testRecords(), nil)
	SortRecords(records, &model.SortSpec{Field: "age", Direction: model.DirectionDesc})
	// "d" has no age, so it keeps its relative position at the tail of the
	// comparable block under a stable sort.
	assert.Equal(t, "a", ids(records)[0])
	assert.Equal(t, "c", ids(records)[1])
}

func TestSortRecords_NilSpecKeepsOrder(t *testing.T) {
	records := FilterRecords(testRecords(), nil)
	SortRecords(records, nil)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(records))
}

func TestSlice_Pagination(t *testing.T) {
	records := FilterRecords(testRecords(), nil)

	page1 := Slice(records, 0, 3)
	assert.Equal(t, 4, page1.Total)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 2, page1.PageCount)
	assert.Len(t, page1.Records, 3)

	page2 := Slice(records, 3, 3)
	assert.Equal(t, 2, page2.Page)
	assert.Len(t, page2.Records, 1)

	// Concatenated pages cover the full result exactly once.
	assert.Equal(t, []string{"a", "b", "c", "d"},
		append(ids(page1.Records), ids(page2.Records)...))
}

func TestSlice_OffsetBeyondEnd(t *testing.T) {
	records := FilterRecords(testRecords(), nil)
	result := Slice(records, 10, 2)
	assert.Empty(t, result.Records)
	assert.Equal(t, 4, result.Total)
}

func TestSlice_NoLimitReturnsAll(t *testing.T) {
	records := FilterRecords(testRecords(), nil)
	result := Slice(records, 0, 0)
	assert.Len(t, result.Records, 4)
	assert.Zero(t, result.Page)
	assert.Zero(t, result.PageCount)
}

func TestProject_KeepsIDAndRequestedPaths(t *testing.T) {
	records := []model.Record{
		{"id": "x", "name": "ana", "address": map[string]interface{}{"city": "Lima", "zip": "15001"}},
	}
	projected := Project(records, []string{"address.city"})
	require.Len(t, projected, 1)

	assert.Equal(t, "x", projected[0]["id"])
	assert.NotContains(t, projected[0], "name")

	address, ok := projected[0]["address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Lima", address["city"])
	assert.NotContains(t, address, "zip")
}

func TestProject_MissingPathIsOmitted(t *testing.T) {
	projected := Project([]model.Record{{"id": "x"}}, []string{"nope.deep"})
	require.Len(t, projected, 1)
	assert.Equal(t, model.Record{"id": "x"}, projected[0])
}

func TestProject_EmptyFieldsDeepCopies(t *testing.T) {
	source := model.Record{"id": "x", "nested": map[string]interface{}{"k": "v"}}
	projected := Project([]model.Record{source}, nil)
	require.Len(t, projected, 1)

	// Mutating the copy must not leak into the source.
	projected[0]["nested"].(map[string]interface{})["k"] = "changed"
	assert.Equal(t, "v", source["nested"].(map[string]interface{})["k"])
}

func TestRun_FullPipelineOrder(t *testing.T) {
	opts := model.QueryOptions{
		Filter: model.Filter{"age": map[string]interface{}{"$gte": 25}},
		Sort:   &model.SortSpec{Field: "age", Direction: model.DirectionDesc},
		Limit:  2,
		Offset: 0,
		Fields: []string{"name"},
	}
	result := Run(testRecords(), opts)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.PageCount)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0]["id"])
	assert.Equal(t, "zulema", result.Records[0]["name"])
	assert.NotContains(t, result.Records[0], "age")
}
