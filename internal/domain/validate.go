package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("user_role", enumValidator(ParseRole))
	v.RegisterValidation("user_status", enumValidator(ParseUserStatus))
	v.RegisterValidation("skill_level", enumValidator(ParseSkillLevel))
	v.RegisterValidation("project_status", enumValidator(ParseProjectStatus))
	v.RegisterValidation("member_status", enumValidator(ParseMemberStatus))

	// Report JSON names so messages match the import columns.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func enumValidator[T ~string](parse func(string) (T, bool)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v, ok := parse(fl.Field().String())
		return ok && string(v) == fl.Field().String()
	}
}

// Validate checks the struct-tag constraints of an entity before it is
// written. The error lists every violated constraint.
func Validate(entity any) error {
	err := structValidator.Struct(entity)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s violates %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s violates %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("constraint violation: %s", strings.Join(msgs, "; "))
}
