package service

import (
	"sort"
	"strings"

	"recordstore/internal/records/domain/model"
)

// Run composes the full read pipeline in its required order: filter → sort →
// offset/limit slice → field projection. Sorting before slicing keeps
// pagination stable across pages.
func Run(records model.RecordMap, opts model.QueryOptions) model.QueryResult {
	filtered := FilterRecords(records, opts.Filter)
	SortRecords(filtered, opts.Sort)
	result := Slice(filtered, opts.Offset, opts.Limit)
	result.Records = Project(result.Records, opts.Fields)
	return result
}

// FilterRecords returns the records matching the filter. The base order is
// ascending record id so repeated calls on unchanged data return the same
// sequence even without an explicit sort.
func FilterRecords(records model.RecordMap, filter model.Filter) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, id := range records.IDs() {
		rec := records[id]
		if filter.IsEmpty() || Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out
}

// SortRecords orders records in place on the named field's natural order.
// The sort is stable: ties and incomparable or missing values keep their
// relative input order. A nil spec leaves the input order untouched.
func SortRecords(records []model.Record, spec *model.SortSpec) {
	if spec == nil {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, okA := records[i].Get(spec.Field)
		b, okB := records[j].Get(spec.Field)
		if !okA || !okB {
			return false
		}
		cmp, ok := compareValues(a, b)
		if !ok {
			return false
		}
		if spec.Direction == model.DirectionDesc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// Slice applies offset/limit and fills in total plus page numbers. Total is
// the post-filter pre-slice count; page numbers are only computed when a
// positive limit applies.
func Slice(records []model.Record, offset, limit int) model.QueryResult {
	total := len(records)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	result := model.QueryResult{
		Records: records[offset:end],
		Total:   total,
	}
	if limit > 0 {
		result.Page = offset/limit + 1
		result.PageCount = (total + limit - 1) / limit
		if result.PageCount == 0 {
			result.PageCount = 1
		}
	}
	return result
}

// Project copies the requested dot-paths of each record into fresh maps. The
// id field is always retained. An empty field list returns deep copies of the
// records untouched, so callers can never mutate stored state through a
// result.
func Project(records []model.Record, fields []string) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, projectRecord(rec, fields))
	}
	return out
}

func projectRecord(rec model.Record, fields []string) model.Record {
	if len(fields) == 0 {
		return rec.Clone()
	}
	projected := model.Record{}
	if id, ok := rec[model.FieldID]; ok {
		projected[model.FieldID] = id
	}
	for _, field := range fields {
		value, ok := rec.Get(field)
		if !ok {
			continue
		}
		setPath(projected, field, model.CloneValue(value))
	}
	return projected
}

// setPath writes a value at a dot path, creating intermediate objects. The
// source value came from the same path of a well-formed record, so
// intermediates here are always maps.
func setPath(rec model.Record, path string, value interface{}) {
	segments := strings.Split(path, ".")
	current := map[string]interface{}(rec)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
