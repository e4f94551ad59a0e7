package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Rule Check Tests
// =============================================================================

func TestRuleChecks(t *testing.T) {
	tests := []struct {
		name      string
		check     *Failure
		wantField string
		wantRule  string
	}{
		{"required passes", Required("Name", "a"), "", ""},
		{"required fails on empty", Required("Name", ""), "Name", "required"},
		{"positive passes", Positive("Quantity", 1), "", ""},
		{"positive fails on zero", Positive("Quantity", 0), "Quantity", "positive"},
		{"positive fails on negative", Positive("Quantity", -3), "Quantity", "positive"},
		{"non-negative passes on zero", NonNegative("Offset", 0), "", ""},
		{"non-negative fails", NonNegative("Offset", -1), "Offset", "non_negative"},
		{"max len passes at bound", MaxLen("SKU", "abcd", 4), "", ""},
		{"max len fails", MaxLen("SKU", "abcde", 4), "SKU", "max_len"},
		{"one of passes", OneOf("Status", "pending", "pending", "confirmed"), "", ""},
		{"one of passes on empty", OneOf("Status", "", "pending"), "", ""},
		{"one of fails", OneOf("Status", "shipped", "pending", "confirmed"), "Status", "one_of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantField == "" {
				assert.Nil(t, tt.check)
				return
			}
			require.NotNil(t, tt.check)
			assert.Equal(t, tt.wantField, tt.check.Field)
			assert.Equal(t, tt.wantRule, tt.check.Rule)
			assert.NotEmpty(t, tt.check.Message)
		})
	}
}

// =============================================================================
// Collect Tests
// =============================================================================

func TestCollect_ReturnsAllFailuresInOrder(t *testing.T) {
	failures := Collect(
		Required("CustomerID", ""),
		Required("SKU", "widget"),
		Positive("Quantity", -2),
		NonNegative("PriceCents", -1),
	)

	// Every violated rule is reported; passing checks are dropped.
	require.Len(t, failures, 3)
	assert.Equal(t, "CustomerID", failures[0].Field)
	assert.Equal(t, "Quantity", failures[1].Field)
	assert.Equal(t, "PriceCents", failures[2].Field)
}

func TestCollect_AllPass(t *testing.T) {
	failures := Collect(
		Required("CustomerID", "c-1"),
		Positive("Quantity", 5),
	)
	assert.Empty(t, failures)
}

// =============================================================================
// ValidateRequest Tests
// =============================================================================

type plainRequest struct{}

func (plainRequest) RequestName() string { return "test.plain" }
func (plainRequest) RequestKind() Kind   { return Query }

func TestValidateRequest_NonValidatableRequestPasses(t *testing.T) {
	assert.Empty(t, ValidateRequest(plainRequest{}))
}
