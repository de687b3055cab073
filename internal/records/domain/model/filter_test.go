package model_test

import (
	"testing"

	. "recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter_Empty(t *testing.T) {
	filter, err := ParseFilter("")
	require.NoError(t, err)
	assert.True(t, filter.IsEmpty())
}

func TestParseFilter_Valid(t *testing.T) {
	filter, err := ParseFilter(`{"age":{"$gte":21},"active":true}`)
	require.NoError(t, err)
	assert.Len(t, filter, 2)
	assert.Equal(t, true, filter["active"])
}

func TestParseFilter_MalformedJSON(t *testing.T) {
	_, err := ParseFilter(`{"age":`)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidFilter, apperrors.Code(err))
}

func TestParseFilter_NonObjectPayload(t *testing.T) {
	_, err := ParseFilter(`[1,2,3]`)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidFilter, apperrors.Code(err))
}

func TestParseSort_Empty(t *testing.T) {
	spec, err := ParseSort("")
	require.NoError(t, err)
	assert.Nil(t, spec)
}

func TestParseSort_FieldOnlyDefaultsAscending(t *testing.T) {
	spec, err := ParseSort("name")
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "name", spec.Field)
	assert.Equal(t, DirectionAsc, spec.Direction)
}

func TestParseSort_ExplicitDirections(t *testing.T) {
	spec, err := ParseSort("age:desc")
	require.NoError(t, err)
	assert.Equal(t, DirectionDesc, spec.Direction)

	spec, err = ParseSort("age:ASC")
	require.NoError(t, err)
	assert.Equal(t, DirectionAsc, spec.Direction)
}

func TestParseSort_DottedField(t *testing.T) {
	spec, err := ParseSort("address.city:desc")
	require.NoError(t, err)
	assert.Equal(t, "address.city", spec.Field)
}

func TestParseSort_Invalid(t *testing.T) {
	_, err := ParseSort(":desc")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidSort, apperrors.Code(err))

	_, err = ParseSort("age:sideways")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidSort, apperrors.Code(err))
}
