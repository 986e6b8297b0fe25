package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultCostLimit bounds the evaluation cost of a single expression
const DefaultCostLimit uint64 = 1000000

// Expression describes a CEL-backed rule. Message and Association are
// reported when the expression evaluates to false.
type Expression struct {
	Source      string
	Message     string
	Association string
}

// Compiler compiles CEL expressions against a fixed environment and caches
// the resulting programs. It is safe for concurrent use.
type Compiler struct {
	env       *cel.Env
	cache     ProgramCache
	costLimit uint64
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithProgramCache replaces the default in-memory program cache
func WithProgramCache(cache ProgramCache) CompilerOption {
	return func(c *Compiler) { c.cache = cache }
}

// WithCostLimit overrides DefaultCostLimit
func WithCostLimit(limit uint64) CompilerOption {
	return func(c *Compiler) { c.costLimit = limit }
}

// NewCompiler creates a compiler whose environment is derived from schema
func NewCompiler(schema Schema, opts ...CompilerOption) (*Compiler, error) {
	env, err := NewEnv(schema)
	if err != nil {
		return nil, err
	}
	return NewCompilerWithEnv(env, opts...), nil
}

// NewCompilerWithEnv creates a compiler over a caller-built CEL environment
func NewCompilerWithEnv(env *cel.Env, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		env:       env,
		costLimit: DefaultCostLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewInMemoryProgramCache(DefaultCacheConfig())
	}
	return c
}

// Compile type-checks expression and returns its program, reusing a cached
// program when one exists
func (c *Compiler) Compile(expression string) (cel.Program, error) {
	if prog, ok := c.cache.Get(expression); ok {
		return prog, nil
	}

	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := c.env.Program(ast,
		cel.CostLimit(c.costLimit),
		cel.InterruptCheckFrequency(100),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	c.cache.Set(expression, prog)
	return prog, nil
}

// Rule builds a rule that is valid when expr evaluates to true over facts.
// A non-boolean result or an evaluation error invalidates the rule; an
// expression that does not compile is reported as an unexpected error.
func (c *Compiler) Rule(expr Expression, facts map[string]any) *Base {
	return New(func(ctx context.Context, r *Base) error {
		prog, err := c.Compile(expr.Source)
		if err != nil {
			return fmt.Errorf("expression %q: %w", expr.Source, err)
		}

		out, _, err := prog.ContextEval(ctx, facts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.Invalidate(fmt.Sprintf("expression %q failed to evaluate: %v", expr.Source, err), expr.Association)
			return nil
		}

		matched, ok := out.Value().(bool)
		if !ok {
			r.Invalidate(fmt.Sprintf("expression %q did not evaluate to a boolean", expr.Source), expr.Association)
			return nil
		}
		if !matched {
			r.Invalidate(expr.Message, expr.Association)
		}
		return nil
	})
}

// Rules builds one rule per expression, in order
func (c *Compiler) Rules(exprs []Expression, facts map[string]any) []Rule {
	out := make([]Rule, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, c.Rule(expr, facts))
	}
	return out
}
