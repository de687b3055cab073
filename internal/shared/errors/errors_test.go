package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	. "recordstore/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_MessageAndCause(t *testing.T) {
	plain := NewValidationError("filtro inválido")
	assert.Equal(t, "filtro inválido", plain.Error())
	assert.Equal(t, http.StatusBadRequest, plain.HTTPCode)

	cause := stderrors.New("sintaxis rota")
	wrapped := NewValidationError("filtro inválido").WithCause(cause)
	assert.Equal(t, "filtro inválido: sintaxis rota", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestAppError_BuilderChain(t *testing.T) {
	err := NewNotFoundError("record").
		WithCode(CodeRecordNotFound).
		WithComponent("engine").
		WithDetail("recordId", "r1")

	assert.Equal(t, "record not found", err.Message)
	assert.Equal(t, CodeRecordNotFound, err.Code)
	assert.Equal(t, "engine", err.Component)
	assert.Equal(t, "r1", err.Details["recordId"])
	assert.Equal(t, http.StatusNotFound, err.HTTPCode)
}

func TestPredicates_MatchAppErrorTypes(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("project")))
	assert.True(t, IsValidation(NewValidationError("mal")))
	assert.True(t, IsConflict(NewConflictError("duplicado")))
	assert.True(t, IsAuthentication(NewAuthenticationError("sin sesión")))
	assert.True(t, IsAuthorization(NewAuthorizationError("sin permiso")))

	// Un tipo no implica los demás.
	assert.False(t, IsNotFound(NewConflictError("duplicado")))
	assert.False(t, IsConflict(NewNotFoundError("record")))
}

func TestPredicates_MatchSentinelsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("buscando usuario: %w", ErrUserNotFound)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsAuthentication(fmt.Errorf("token: %w", ErrTokenExpired)))
	assert.True(t, IsAuthorization(fmt.Errorf("acceso: %w", ErrForbidden)))
	assert.False(t, IsNotFound(stderrors.New("otra cosa")))
}

func TestPredicates_SeeThroughFmtWrappedAppError(t *testing.T) {
	inner := NewConflictError("id duplicado").WithCode(CodeDuplicateRecordID)
	outer := fmt.Errorf("batch item 3: %w", inner)

	assert.True(t, IsConflict(outer))
	assert.Equal(t, CodeDuplicateRecordID, Code(outer))
}

func TestWrapError(t *testing.T) {
	// AppError pasa intacto, sin re-envolver.
	original := NewValidationError("mal").WithCode(CodeInvalidPayload)
	assert.Same(t, original, WrapError(original, "ignorado"))

	wrapped := WrapError(stderrors.New("mongo caído"), "persisting container")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.Equal(t, "persisting container: mongo caído", wrapped.Error())
}

func TestNewStorageError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewStorageError("loading container", cause)

	assert.Equal(t, CodeStorageFailure, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
	assert.ErrorIs(t, err, cause)
}

func TestCode_EmptyForPlainErrors(t *testing.T) {
	assert.Equal(t, "", Code(stderrors.New("sin código")))
	assert.Equal(t, "", Code(nil))
}
