// Package validator adapts go-playground/validator to echo and turns its failures into client-facing messages.
package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New registers the custom tags: phone (plausible international number), role (known persona)
// and maxbytes (length in bytes rather than runes, for bcrypt's 72-byte input limit).
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("role", validateRole)
	_ = v.RegisterValidation("maxbytes", validateMaxBytes)

	return &CustomValidator{validate: v}
}

// Validate returns a 400 AppError describing the first failing field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return domainerrors.NewValidationError(describe(fieldErrs[0]))
}

func validatePhone(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}

	num, err := phonenumbers.Parse(value, "")
	if err != nil {
		return false
	}

	return phonenumbers.IsPossibleNumber(num)
}

func validateRole(fl validator.FieldLevel) bool {
	_, ok := entity.ParseRole(fl.Field().String())

	return ok
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

func describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "alphanum":
		return fmt.Sprintf("%s must only contain alpha-numeric characters", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes long", field, fe.Param())
	case "phone":
		return fmt.Sprintf("%s must be an international phone number", field)
	case "role":
		return fmt.Sprintf("%s must be one of innovator, developer, investor, admin", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
