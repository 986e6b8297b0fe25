package rules

import "context"

// Callback is invoked once a rule's tree has settled
type Callback func(ctx context.Context, r Rule) error

// ValidateFunc holds a rule's own validation logic. It reports failure by
// calling r.Invalidate; a returned error is treated as unexpected and aborts
// the evaluation.
type ValidateFunc func(ctx context.Context, r *Base) error

// Rule is a single validatable unit with optional successor groups
type Rule interface {
	// Execute evaluates the rule and its successors. The returned error is
	// reserved for unexpected failures; validation failures are reported
	// through IsValid and ErrorMessage.
	Execute(ctx context.Context) error

	IsValid() bool
	ErrorMessage() string
	Association() string

	// IfValidThenValidate appends one successor group, evaluated only while
	// the rule is still valid
	IfValidThenValidate(rules ...Rule) Rule

	// IfValidThenInvoke registers a one-shot callback fired when the rule
	// settles as valid
	IfValidThenInvoke(fn Callback) Rule

	// IfInvalidThenInvoke registers a one-shot callback fired when the rule
	// settles as invalid
	IfInvalidThenInvoke(fn Callback) Rule
}

// Group is an ordered list of sibling rules evaluated together
type Group []Rule

// Base implements Rule around a ValidateFunc. Concrete rules are built by
// constructing a Base (see New) or by embedding *Base in a struct.
//
// A Base is owned by a single evaluation and is not safe for concurrent use.
type Base struct {
	validate     ValidateFunc
	valid        bool
	errorMessage string
	association  string
	successors   []Group
	onValid      Callback
	onInvalid    Callback
}

// New creates a rule whose own logic is validate. A nil validate yields a
// rule that is valid unless one of its successors fails.
func New(validate ValidateFunc) *Base {
	return &Base{validate: validate, valid: true}
}

// Execute runs the rule's own logic and then, while still valid, each
// successor group in the order it was added. The first invalid successor
// stops the walk and its message and association are copied onto r.
// Exactly one of the registered callbacks fires after the tree settles.
func (r *Base) Execute(ctx context.Context) error {
	r.valid = true
	r.errorMessage = ""
	r.association = ""

	if r.validate != nil {
		if err := r.validate(ctx, r); err != nil {
			return err
		}
	}

	if r.valid {
	groups:
		for _, group := range r.successors {
			for _, successor := range group {
				if err := successor.Execute(ctx); err != nil {
					return err
				}
				if !successor.IsValid() {
					r.Invalidate(successor.ErrorMessage(), successor.Association())
					break groups
				}
			}
		}
	}

	return r.settle(ctx)
}

// settle fires the callback matching the final validity and clears it
func (r *Base) settle(ctx context.Context) error {
	var fn Callback
	if r.valid {
		fn, r.onValid = r.onValid, nil
	} else {
		fn, r.onInvalid = r.onInvalid, nil
	}
	if fn == nil {
		return nil
	}
	return fn(ctx, r)
}

// Invalidate marks the rule invalid. The optional association names the
// field or entity the failure concerns.
func (r *Base) Invalidate(message string, association ...string) {
	r.valid = false
	r.errorMessage = message
	r.association = ""
	if len(association) > 0 {
		r.association = association[0]
	}
}

func (r *Base) IsValid() bool        { return r.valid }
func (r *Base) ErrorMessage() string { return r.errorMessage }
func (r *Base) Association() string  { return r.association }

// IfValidThenValidate appends rules as one group. Nil entries are dropped,
// as in Validate.
func (r *Base) IfValidThenValidate(rules ...Rule) Rule {
	group := make(Group, 0, len(rules))
	for _, rule := range rules {
		if rule != nil {
			group = append(group, rule)
		}
	}
	r.successors = append(r.successors, group)
	return r
}

func (r *Base) IfValidThenInvoke(fn Callback) Rule {
	r.onValid = fn
	return r
}

func (r *Base) IfInvalidThenInvoke(fn Callback) Rule {
	r.onInvalid = fn
	return r
}

// Successors returns a copy of the configured successor groups
func (r *Base) Successors() []Group {
	out := make([]Group, len(r.successors))
	copy(out, r.successors)
	return out
}
