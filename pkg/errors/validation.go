package errors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validation converts validator failures into a VALIDATION_ERROR carrying one
// message per offending field. Non-validator errors (for example malformed
// JSON) are wrapped without field details.
func Validation(err error, message string) *Error {
	if message == "" {
		message = ErrValidation.Message
	}
	out := Wrap(err, ErrValidation.Code, ErrValidation.Status, message)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	out.Fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid identifier"
	case "datetime":
		return fmt.Sprintf("must be a date formatted as %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
