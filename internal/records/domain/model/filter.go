package model

import (
	"encoding/json"

	apperrors "recordstore/internal/shared/errors"
)

// Filter operator and combinator keys of the predicate tree.
const (
	OpEq       = "$eq"
	OpNe       = "$ne"
	OpGt       = "$gt"
	OpGte      = "$gte"
	OpLt       = "$lt"
	OpLte      = "$lte"
	OpIn       = "$in"
	OpNin      = "$nin"
	OpContains = "$contains"
	OpRegex    = "$regex"

	CombAnd   = "$and"
	CombOr    = "$or"
	KeySearch = "$search"
)

// Filter is a predicate tree as parsed from its JSON wire form: field → value
// (implicit equality), field → operator-object, $and/$or of sub-filters, or a
// top-level $search condition; multiple top-level keys combine by implicit AND.
type Filter map[string]interface{}

// ParseFilter parses the single-parameter JSON wire form of a filter. An empty
// input is a match-all filter; a parse failure or non-object payload is an
// InvalidFilter validation error.
func ParseFilter(raw string) (Filter, error) {
	if raw == "" {
		return Filter{}, nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, apperrors.NewValidationError("malformed filter expression").
			WithCode(apperrors.CodeInvalidFilter).
			WithCause(err)
	}
	return Filter(parsed), nil
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return len(f) == 0
}
