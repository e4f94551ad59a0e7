package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ErrorKind Tests
// =============================================================================

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ValidationError, "validation_error"},
		{NotFoundError, "not_found"},
		{ConflictError, "conflict"},
		{DependencyError, "dependency_error"},
		{UnexpectedError, "unexpected_error"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestErrorKind_MarshalsAsString(t *testing.T) {
	data, err := json.Marshal(Conflictf("duplicate"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"conflict"`)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestError_UnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency(cause, "insert order")

	assert.Equal(t, DependencyError, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert order")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUnexpected_HidesCauseFromMessage(t *testing.T) {
	err := Unexpected(errors.New("nil pointer in handler"))

	assert.Equal(t, "internal error", err.Message)

	// The cause never reaches the serialized form.
	data, merr := json.Marshal(err)
	require.NoError(t, merr)
	assert.NotContains(t, string(data), "nil pointer")
}

func TestAsError(t *testing.T) {
	typed := NotFoundf("order %s not found", "o-1")

	e, ok := AsError(fmt.Errorf("handler: %w", typed))
	require.True(t, ok)
	assert.Equal(t, NotFoundError, e.Kind)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

// =============================================================================
// Result Tests
// =============================================================================

func TestResult_OK(t *testing.T) {
	assert.True(t, Success("v").OK())
	assert.False(t, Failed(Conflictf("nope")).OK())
}

func TestValueAs(t *testing.T) {
	type payload struct{ ID string }

	got, err := ValueAs[*payload](Success(&payload{ID: "p-1"}))
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)

	_, err = ValueAs[string](Success(42))
	assert.Error(t, err)

	_, err = ValueAs[*payload](Failed(NotFoundf("missing")))
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, NotFoundError, e.Kind)
}

func TestInvalid_CarriesFailures(t *testing.T) {
	err := Invalid([]Failure{
		{Field: "Quantity", Message: "Quantity must be positive, got -1", Rule: "positive"},
	})
	assert.Equal(t, ValidationError, err.Kind)
	require.Len(t, err.Failures, 1)
	assert.Equal(t, "Quantity", err.Failures[0].Field)
}
