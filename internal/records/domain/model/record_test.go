package model_test

import (
	"testing"
	"time"

	. "recordstore/internal/records/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("abc-123_X"))
	assert.True(t, ValidID("9"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("con espacios"))
	assert.False(t, ValidID("path/like"))
	assert.False(t, ValidID("dotted.id"))
}

func TestNewID_UniqueAndValid(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidID(a))
}

func TestFormatTimestamp_FixedWidthUTC(t *testing.T) {
	loc := time.FixedZone("PET", -5*3600)
	ts := time.Date(2026, 3, 9, 18, 4, 5, 7_000_000, loc)

	formatted := FormatTimestamp(ts)
	assert.Equal(t, "2026-03-09T23:04:05.007Z", formatted)
	assert.Len(t, formatted, 24)
}

func TestFormatTimestamp_LexicographicOrderIsChronological(t *testing.T) {
	earlier := FormatTimestamp(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	later := FormatTimestamp(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestRecordGet_DotPaths(t *testing.T) {
	rec := Record{
		"id": "r1",
		"address": map[string]interface{}{
			"geo": map[string]interface{}{"lat": float64(1.5)},
		},
	}

	v, ok := rec.Get("address.geo.lat")
	require.True(t, ok)
	assert.Equal(t, float64(1.5), v)

	_, ok = rec.Get("address.street")
	assert.False(t, ok)

	// Traversal through a non-object stops cleanly.
	_, ok = rec.Get("id.sub")
	assert.False(t, ok)
}

func TestRecordGet_ExplicitNull(t *testing.T) {
	rec := Record{"id": "r1", "note": nil}
	v, ok := rec.Get("note")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestRecordClone_IsDeep(t *testing.T) {
	src := Record{
		"id":   "r1",
		"tags": []interface{}{"a"},
		"meta": map[string]interface{}{"k": "v"},
	}
	cp := src.Clone()

	cp["meta"].(map[string]interface{})["k"] = "changed"
	cp["tags"].([]interface{})[0] = "changed"

	assert.Equal(t, "v", src["meta"].(map[string]interface{})["k"])
	assert.Equal(t, "a", src["tags"].([]interface{})[0])
}

func TestRecordMapIDs_Sorted(t *testing.T) {
	m := RecordMap{
		"charlie": {"id": "charlie"},
		"alpha":   {"id": "alpha"},
		"bravo":   {"id": "bravo"},
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, m.IDs())
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "r1", Record{"id": "r1"}.ID())
	assert.Empty(t, Record{}.ID())
	assert.Empty(t, Record{"id": 42}.ID())
}
