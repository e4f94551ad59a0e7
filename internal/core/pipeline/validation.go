package pipeline

import "fmt"

// =============================================================================
// Validation Failures
// =============================================================================

// Failure describes one violated validation rule.
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule"`
}

// Collect gathers the non-nil failures from a set of rule checks,
// preserving order. Every check has already run by the time Collect is
// called, so the caller receives the complete failure set in one pass.
func Collect(checks ...*Failure) []Failure {
	var failures []Failure
	for _, c := range checks {
		if c != nil {
			failures = append(failures, *c)
		}
	}
	return failures
}

// ValidateRequest runs the request's declared rules, if any.
func ValidateRequest(req Request) []Failure {
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	return v.Validate()
}

// =============================================================================
// Rule Checks
// =============================================================================
//
// Each check returns nil when the rule passes, so requests can declare
// their rules declaratively:
//
//	func (c CreateOrder) Validate() []Failure {
//	    return Collect(
//	        Required("CustomerID", c.CustomerID),
//	        Positive("Quantity", c.Quantity),
//	    )
//	}

// Required fails when the string value is empty.
func Required(field, value string) *Failure {
	if value != "" {
		return nil
	}
	return &Failure{Field: field, Message: field + " is required", Rule: "required"}
}

// Positive fails when n is zero or negative.
func Positive(field string, n int) *Failure {
	if n > 0 {
		return nil
	}
	return &Failure{Field: field, Message: fmt.Sprintf("%s must be positive, got %d", field, n), Rule: "positive"}
}

// NonNegative fails when n is negative.
func NonNegative(field string, n int64) *Failure {
	if n >= 0 {
		return nil
	}
	return &Failure{Field: field, Message: fmt.Sprintf("%s must not be negative, got %d", field, n), Rule: "non_negative"}
}

// MaxLen fails when the string value is longer than max bytes.
func MaxLen(field, value string, max int) *Failure {
	if len(value) <= max {
		return nil
	}
	return &Failure{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max), Rule: "max_len"}
}

// OneOf fails when the value is not one of the allowed values.
// Empty values pass; combine with Required when the field is mandatory.
func OneOf(field, value string, allowed ...string) *Failure {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &Failure{Field: field, Message: fmt.Sprintf("%s must be one of %v", field, allowed), Rule: "one_of"}
}
