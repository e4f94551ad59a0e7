package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, req Request, uow UnitOfWork) (any, error) {
		return nil, nil
	})
}

func testRegistration(name string) Registration {
	return Registration{
		Name:    name,
		Kind:    Command,
		New:     func() Request { return &fakeRequest{name: name, kind: Command} },
		Handler: noopHandler(),
	}
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegistry_AddAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(testRegistration("orders.create")))
	require.NoError(t, reg.Add(testRegistration("orders.cancel")))

	r, ok := reg.Lookup("orders.create")
	require.True(t, ok)
	assert.Equal(t, "orders.create", r.Name)

	_, ok = reg.Lookup("orders.unknown")
	assert.False(t, ok)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"orders.create", "orders.cancel"}, reg.Names())
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(testRegistration("orders.create")))

	err := reg.Add(testRegistration("orders.create"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_RejectsIncompleteRegistrations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Registration)
	}{
		{"empty name", func(r *Registration) { r.Name = "" }},
		{"zero kind", func(r *Registration) { r.Kind = 0 }},
		{"nil constructor", func(r *Registration) { r.New = nil }},
		{"nil handler", func(r *Registration) { r.Handler = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRegistration("orders.create")
			tt.mutate(&r)
			assert.Error(t, NewRegistry().Add(r))
		})
	}
}
