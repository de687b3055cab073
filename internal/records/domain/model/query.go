package model

import (
	"strings"

	apperrors "recordstore/internal/shared/errors"
)

// Direction is a sort direction in the "field:direction" wire form.
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// SortSpec names the field a result set orders on and the direction.
type SortSpec struct {
	Field     string
	Direction Direction
}

// ParseSort parses the "field:direction" wire form. An empty input means no
// explicit sort (the engine then orders by record id for determinism).
func ParseSort(raw string) (*SortSpec, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if parts[0] == "" {
		return nil, apperrors.NewValidationError("sort field must not be empty").
			WithCode(apperrors.CodeInvalidSort)
	}
	spec := &SortSpec{Field: parts[0], Direction: DirectionAsc}
	if len(parts) == 2 {
		switch Direction(strings.ToLower(parts[1])) {
		case DirectionAsc:
			spec.Direction = DirectionAsc
		case DirectionDesc:
			spec.Direction = DirectionDesc
		default:
			return nil, apperrors.NewValidationError("sort direction must be asc or desc").
				WithCode(apperrors.CodeInvalidSort).
				WithDetail("direction", parts[1])
		}
	}
	return spec, nil
}

// QueryOptions carries everything the pagination pipeline needs beyond the
// record set itself. Zero Limit means no slicing.
type QueryOptions struct {
	Filter Filter
	Sort   *SortSpec
	Limit  int
	Offset int
	Fields []string
}

// QueryResult is the outcome of a collection read: the sliced records, the
// post-filter pre-slice total, and the page numbers when a limit applied.
type QueryResult struct {
	Records   []Record `json:"records"`
	Total     int      `json:"total"`
	Page      int      `json:"page,omitempty"`
	PageCount int      `json:"pageCount,omitempty"`
}

// Entry pairs a record id with its record for the entries listing.
type Entry struct {
	ID     string `json:"id"`
	Record Record `json:"record"`
}
