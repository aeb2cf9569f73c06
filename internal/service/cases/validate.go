package cases

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldNameFromTag)
	return v
}

func fieldNameFromTag(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// validationError turns the first failed rule into an InputError.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return invalidf("invalid request: %v", err)
	}
	return invalidf("%s", fieldMessage(ve[0]))
}

func fieldMessage(fe validator.FieldError) string {
	var rule string
	switch fe.ActualTag() {
	case "required":
		rule = "is required"
	case "oneof":
		rule = "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "max":
		rule = fmt.Sprintf("must have at most %s characters", fe.Param())
	case "datetime":
		rule = "should be a date in the format YYYY-MM-DD"
	default:
		rule = "is invalid"
	}
	return fmt.Sprintf("field `%s` %s", fe.Field(), rule)
}
