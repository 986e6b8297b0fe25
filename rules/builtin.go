package rules

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"unicode/utf8"
)

// Valid returns a rule that always passes
func Valid() *Base {
	return New(nil)
}

// Invalid returns a rule that always fails with message
func Invalid(message string, association ...string) *Base {
	return New(func(_ context.Context, r *Base) error {
		r.Invalidate(message, association...)
		return nil
	})
}

// Required fails when value is nil or the zero value of its type
func Required(field string, value any) *Base {
	return New(func(_ context.Context, r *Base) error {
		if isZero(value) {
			r.Invalidate(fmt.Sprintf("%s is required", field), field)
		}
		return nil
	})
}

// MaxLength fails when value has more than max characters
func MaxLength(field, value string, max int) *Base {
	return New(func(_ context.Context, r *Base) error {
		if n := utf8.RuneCountInString(value); n > max {
			r.Invalidate(fmt.Sprintf("%s must be at most %d characters, got %d", field, max, n), field)
		}
		return nil
	})
}

// Range fails when value lies outside [min, max]
func Range[N cmp.Ordered](field string, value, min, max N) *Base {
	return New(func(_ context.Context, r *Base) error {
		if value < min || value > max {
			r.Invalidate(fmt.Sprintf("%s must be between %v and %v, got %v", field, min, max, value), field)
		}
		return nil
	})
}

// Predicate fails with message when fn reports false. An error from fn is
// propagated as unexpected.
func Predicate(field, message string, fn func(ctx context.Context) (bool, error)) *Base {
	return New(func(ctx context.Context, r *Base) error {
		ok, err := fn(ctx)
		if err != nil {
			return err
		}
		if !ok {
			r.Invalidate(message, field)
		}
		return nil
	})
}

func isZero(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	}
	return v.IsZero()
}
