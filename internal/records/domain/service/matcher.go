package service

import (
	"reflect"
	"regexp"
	"strings"

	"recordstore/internal/records/domain/model"
)

// Matches evaluates a record against a filter expression. The evaluator is
// total: malformed conditions, unknown operators, missing field paths and
// cross-type comparisons all yield false for the affected condition, never an
// error.
//
// Comparison semantics: numbers compare numerically across int/float
// representations, strings lexicographically, booleans false < true.
// Everything else is incomparable, so ordering operators on mixed types lean
// false.
func Matches(record model.Record, filter model.Filter) bool {
	for key, condition := range filter {
		switch key {
		case model.CombAnd:
			if !matchAnd(record, condition) {
				return false
			}
		case model.CombOr:
			if !matchOr(record, condition) {
				return false
			}
		case model.KeySearch:
			term, ok := condition.(string)
			if !ok || !searchValue(map[string]interface{}(record), strings.ToLower(term)) {
				return false
			}
		default:
			if !matchField(record, key, condition) {
				return false
			}
		}
	}
	return true
}

// matchAnd requires every sub-filter to hold. An empty $and is vacuously true.
func matchAnd(record model.Record, condition interface{}) bool {
	subs, ok := subFilters(condition)
	if !ok {
		return false
	}
	for _, sub := range subs {
		if !Matches(record, sub) {
			return false
		}
	}
	return true
}

// matchOr requires at least one sub-filter to hold. An empty $or is false.
func matchOr(record model.Record, condition interface{}) bool {
	subs, ok := subFilters(condition)
	if !ok {
		return false
	}
	for _, sub := range subs {
		if Matches(record, sub) {
			return true
		}
	}
	return false
}

func subFilters(condition interface{}) ([]model.Filter, bool) {
	arr, ok := condition.([]interface{})
	if !ok {
		return nil, false
	}
	subs := make([]model.Filter, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		subs = append(subs, model.Filter(obj))
	}
	return subs, true
}

func matchField(record model.Record, path string, condition interface{}) bool {
	value, exists := record.Get(path)

	if ops, ok := operatorObject(condition); ok {
		for op, operand := range ops {
			if !applyOperator(op, value, exists, operand) {
				return false
			}
		}
		return true
	}

	// Bare value: implicit equality. A missing field never equals anything,
	// explicit null included.
	return exists && equalValues(value, condition)
}

// operatorObject reports whether the condition is an operator object: a map
// whose keys are all operator-style ($-prefixed). Plain objects compare by
// deep equality instead.
func operatorObject(condition interface{}) (map[string]interface{}, bool) {
	obj, ok := condition.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return nil, false
	}
	for key := range obj {
		if !strings.HasPrefix(key, "$") {
			return nil, false
		}
	}
	return obj, true
}

func applyOperator(op string, value interface{}, exists bool, operand interface{}) bool {
	switch op {
	case model.OpEq:
		return exists && equalValues(value, operand)
	case model.OpNe:
		return exists && !equalValues(value, operand)
	case model.OpGt:
		cmp, ok := compareValues(value, operand)
		return exists && ok && cmp > 0
	case model.OpGte:
		cmp, ok := compareValues(value, operand)
		return exists && ok && cmp >= 0
	case model.OpLt:
		cmp, ok := compareValues(value, operand)
		return exists && ok && cmp < 0
	case model.OpLte:
		cmp, ok := compareValues(value, operand)
		return exists && ok && cmp <= 0
	case model.OpIn:
		return exists && membership(value, operand)
	case model.OpNin:
		return exists && !membership(value, operand)
	case model.OpContains:
		str, okV := value.(string)
		sub, okO := operand.(string)
		return exists && okV && okO && strings.Contains(str, sub)
	case model.OpRegex:
		str, okV := value.(string)
		pattern, okO := operand.(string)
		if !exists || !okV || !okO {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(str)
	default:
		// Unknown operator key: condition false, never an error.
		return false
	}
}

func membership(value interface{}, operand interface{}) bool {
	arr, ok := operand.([]interface{})
	if !ok {
		return false
	}
	for _, item := range arr {
		if equalValues(value, item) {
			return true
		}
	}
	return false
}

// equalValues compares two dynamic values, normalizing numeric
// representations first.
func equalValues(a, b interface{}) bool {
	if fa, okA := asNumber(a); okA {
		fb, okB := asNumber(b)
		return okB && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues returns the natural order of two values of the same runtime
// kind, or ok=false when they are incomparable.
func compareValues(a, b interface{}) (int, bool) {
	if fa, okA := asNumber(a); okA {
		fb, okB := asNumber(b)
		if !okB {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if sa, okA := a.(string); okA {
		sb, okB := b.(string)
		if !okB {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	if ba, okA := a.(bool); okA {
		bb, okB := b.(bool)
		if !okB {
			return 0, false
		}
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// asNumber normalizes the numeric representations JSON decoding and callers
// may hand the engine.
func asNumber(v interface{}) (float64, bool) {
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

// searchValue recursively looks for the lowered term inside every
// string-valued field, descending into nested objects and arrays.
func searchValue(v interface{}, loweredTerm string) bool {
	switch val := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(val), loweredTerm)
	case map[string]interface{}:
		for _, inner := range val {
			if searchValue(inner, loweredTerm) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, inner := range val {
			if searchValue(inner, loweredTerm) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
