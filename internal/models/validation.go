package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[+]?[1-9][0-9]{0,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "itemtype", func(fl validator.FieldLevel) bool {
		return slices.Contains(ItemTypes, fl.Field().String())
	})
	mustRegister(v, "itemsize", func(fl validator.FieldLevel) bool {
		return slices.Contains(ItemSizes, fl.Field().String())
	})
	mustRegister(v, "itemcondition", func(fl validator.FieldLevel) bool {
		return slices.Contains(ItemConditions, fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidationError lists per-field problems found while validating a record.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	slices.Sort(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate checks the item against its schema.
func (i *Item) Validate() error {
	return validateStruct(i)
}

// Validate checks the enquiry against its schema.
func (e *Enquiry) Validate() error {
	return validateStruct(e)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("cannot exceed %s characters", fe.Param())
	case "gte":
		return "cannot be negative"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "itemtype":
		return "must be one of " + strings.Join(ItemTypes, ", ")
	case "itemsize":
		return "must be one of " + strings.Join(ItemSizes, ", ")
	case "itemcondition":
		return "must be one of " + strings.Join(ItemConditions, ", ")
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
