// Package rules provides composable validation rules.
//
// A rule validates one thing and may carry successor groups that are
// evaluated only while the rule is still valid:
//
//	rule := rules.Required("Name", p.Name).
//		IfValidThenValidate(rules.MaxLength("Name", p.Name, 100)).
//		IfValidThenValidate(priceRule, stockRule)
//
// Evaluation is depth-first and strictly sequential. The first failing
// successor in a group aborts the remaining siblings and every later group,
// and its message becomes the parent's message. Validate runs a list of
// top-level rules and collects a ValidationResult for each failure.
//
// Expression rules are compiled from CEL by a Compiler, which memoises the
// compiled programs in a ProgramCache owned by the caller.
package rules
