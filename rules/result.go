package rules

import (
	"context"
	"fmt"
)

// ValidationResult is the outcome recorded for one invalid rule
type ValidationResult struct {
	ErrorMessage string   `json:"errorMessage"`
	MemberNames  []string `json:"memberNames"`
}

// NewValidationResult creates a ValidationResult for the given members
func NewValidationResult(message string, memberNames ...string) ValidationResult {
	names := make([]string, len(memberNames))
	copy(names, memberNames)
	return ValidationResult{ErrorMessage: message, MemberNames: names}
}

func (v ValidationResult) String() string {
	if len(v.MemberNames) == 0 || v.MemberNames[0] == "" {
		return v.ErrorMessage
	}
	return fmt.Sprintf("%s: %s", v.MemberNames[0], v.ErrorMessage)
}

// ResultFromRule converts an invalid rule into a ValidationResult. The rule's
// association becomes the member name; entityName is used when the rule has
// none.
func ResultFromRule(r Rule, entityName string) ValidationResult {
	member := r.Association()
	if member == "" {
		member = entityName
	}
	return NewValidationResult(r.ErrorMessage(), member)
}

// Validate executes each rule in order, one at a time, and collects a
// ValidationResult for every rule left invalid. Rules are never evaluated
// concurrently: they may share a downstream resource and reporting order must
// follow declaration order.
func Validate(ctx context.Context, entityName string, rules ...Rule) ([]ValidationResult, error) {
	var results []ValidationResult
	for i, r := range rules {
		if r == nil {
			continue
		}
		if err := r.Execute(ctx); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if !r.IsValid() {
			results = append(results, ResultFromRule(r, entityName))
		}
	}
	return results, nil
}
