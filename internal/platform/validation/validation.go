// Package validation registers the credential rules as validator v10 tags and
// turns validator errors into user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"basic_authn/internal/feature/auth/domain"
)

// Custom tag names.
const (
	TagNotBlank         = "notblank"
	TagPasswordStrength = "password_strength"
)

// StructRule is a struct-level validation bound to the types it checks.
type StructRule struct {
	Fn    validator.StructLevelFunc
	Types []any
}

// Register adds the custom tags and rules to v.
func Register(v *validator.Validate, rules ...StructRule) error {
	if err := v.RegisterValidation(TagNotBlank, validators.NotBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}
	if err := v.RegisterValidation(TagPasswordStrength, passwordStrength); err != nil {
		return fmt.Errorf("register %s: %w", TagPasswordStrength, err)
	}
	for _, r := range rules {
		v.RegisterStructValidation(r.Fn, r.Types...)
	}
	return nil
}

// RegisterGin adds the custom tags and rules to gin's default binding validator,
// so that `binding:"..."` struct tags can use them.
func RegisterGin(rules ...StructRule) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v, rules...)
}

// IndependentEmail reports an "email" violation on the named string field whenever
// it is non-empty and not an address, regardless of the field's own tags.
// A field tag list stops at its first failure; this rule does not.
func IndependentEmail(field string) validator.StructLevelFunc {
	return func(sl validator.StructLevel) {
		f := reflect.Indirect(sl.Current()).FieldByName(field)
		if !f.IsValid() || f.Kind() != reflect.String {
			return
		}
		value := f.String()
		if value == "" {
			return
		}
		if err := sl.Validator().Var(value, "email"); err != nil {
			sl.ReportError(value, field, field, "email", "")
		}
	}
}

func passwordStrength(fl validator.FieldLevel) bool {
	return domain.IsStrongPassword(fl.Field().String())
}

// Catalog maps "<StructField>.<tag>" to the message reported for that violation.
type Catalog map[string]string

// Messages translates err into one message per violation: field tags in struct
// field order first, then struct-level rules.
// Violations missing from catalog are reported as "<field> is invalid".
// ok is false when err is not a validator.ValidationErrors.
func Messages(err error, catalog Catalog) (messages []string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	for _, fe := range verrs {
		msg, found := catalog[fe.StructField()+"."+fe.Tag()]
		if !found {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		messages = append(messages, msg)
	}
	return messages, true
}
