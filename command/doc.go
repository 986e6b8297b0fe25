// Package command runs business operations through a uniform
// validate-then-execute pipeline.
//
// A Pipeline drives a Handler through initialization, validation and
// execution:
//
//	Created → Initializing → Validating → Failed
//	                                    → Executing → Completed
//
// Validation failures short-circuit before Execute is called, so no
// application side effect happens when any rule fails. A *Fault returned
// from Execute is converted into a failed ExecutionResult; every other error
// is returned to the caller untouched.
//
// ServiceCommand builds a Pipeline from plain functions for one-off
// operations. Validate on a Pipeline runs the first two stages only and
// returns a ValidationResult whose Continue method completes the command.
package command
