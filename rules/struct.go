package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Struct validates entity against its `validate` struct tags. The first
// failing field invalidates the rule and becomes its association.
//
// The *validator.Validate is owned by the caller; it caches struct metadata,
// so share one instance per process rather than creating one per call.
func Struct(validate *validator.Validate, entity any) *Base {
	return New(func(ctx context.Context, r *Base) error {
		err := validate.StructCtx(ctx, entity)
		if err == nil {
			return nil
		}

		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			r.Invalidate(fieldMessage(fe), fe.Field())
			return nil
		}
		return fmt.Errorf("struct validation: %w", err)
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
