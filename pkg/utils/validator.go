// Package utils holds small shared helpers.
package utils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs struct-tag validation and translates failures into a
// single validation AppError with per-field details.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ErrValidation("invalid request").WithError(err)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = ruleMessage(fe)
	}
	return apperrors.ErrValidation("Missing required fields").WithDetails(details)
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace is Type.Field; drop the type for response details.
	parts := strings.SplitN(fe.StructNamespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
