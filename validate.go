package route

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SelfValidator is implemented by body types that validate themselves.
type SelfValidator interface {
	Validate() error
}

// BodyValidator validates a decoded request body.
type BodyValidator interface {
	Validate(body any) error
}

// StructValidator validates `validate` struct tags with go-playground/validator.
// Failures are reported as *InvalidParametersError with one violation per
// field, named "body.<json name>".
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator returns a StructValidator that names fields by their
// JSON tag.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		default:
			return name
		}
	})
	return &StructValidator{v: v}
}

// Engine exposes the underlying validator for custom rule registration.
func (s *StructValidator) Engine() *validator.Validate { return s.v }

// Validate checks body when it is a struct or a pointer to one.
func (s *StructValidator) Validate(body any) error {
	t := reflect.TypeOf(body)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if rv := reflect.ValueOf(body); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	err := s.v.Struct(body)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, ValidationError{
			Field:   "body." + fieldPath(fe.Namespace()),
			Message: violationMessage(fe),
			Value:   fe.Value(),
		})
	}
	return &InvalidParametersError{Violations: violations}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func violationMessage(fe validator.FieldError) string {
	field := "body." + fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return "Required body field `" + field + "` is missing"
	default:
		msg := "Body field `" + field + "` is invalid, expecting " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return msg
	}
}
