package model

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine-owned record fields. They are stamped on write paths and are not
// caller-settable.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// TimestampFormat is a fixed-width UTC ISO-8601 layout with millisecond
// precision, so lexicographic order equals chronological order.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Record is the stored unit: an open field map carrying a unique id. Values
// follow the JSON model (nil, bool, float64, string, []interface{},
// map[string]interface{}).
type Record map[string]interface{}

// RecordMap is the full content of one collection container, keyed by record id.
type RecordMap map[string]Record

// ValidID reports whether id matches the allowed record id charset.
func ValidID(id string) bool {
	return recordIDPattern.MatchString(id)
}

// NewID generates a globally-unique opaque record id.
func NewID() string {
	return uuid.NewString()
}

// FormatTimestamp renders t in the engine's timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ID returns the record's id field, or the empty string if absent.
func (r Record) ID() string {
	if id, ok := r[FieldID].(string); ok {
		return id
	}
	return ""
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a dynamic value following the JSON type model.
func CloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = CloneValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = CloneValue(inner)
		}
		return out
	default:
		return val
	}
}

// Get resolves a dot-notation field path. A missing intermediate node yields
// (nil, false), never an error.
func (r Record) Get(path string) (interface{}, bool) {
	if r == nil {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var current interface{} = map[string]interface{}(r)
	for _, seg := range segments {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Clone returns a deep copy of the record map.
func (m RecordMap) Clone() RecordMap {
	if m == nil {
		return nil
	}
	out := make(RecordMap, len(m))
	for id, rec := range m {
		out[id] = rec.Clone()
	}
	return out
}

// IDs returns the record ids in ascending order. With no explicit sort the
// engine orders by id so repeated reads are deterministic.
func (m RecordMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
