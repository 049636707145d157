package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the mess-specific tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := domain.NewTimeOfDay(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, err := domain.NewWeekday(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("mealcategory", func(fl validator.FieldLevel) bool {
			_, err := domain.NewMealCategory(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// DecodeJSON reads a size-limited JSON body into dst and validates its struct tags.
// Failures are returned wrapped in domain.ErrInvalidInput.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBody)).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return ValidateStruct(dst)
}

// DecodeOptionalJSON is DecodeJSON for bodies that may be empty. An empty body,
// chunked or not, leaves dst at its zero value.
func DecodeOptionalJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBody)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs struct-tag validation and renders one message per field.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hhmm":
		return fmt.Sprintf("%s must be in HH:MM format", field)
	case "weekday":
		return fmt.Sprintf("%s must be a day of the week", field)
	case "mealcategory":
		return fmt.Sprintf("%s must be breakfast, lunch, dinner or snacks", field)
	case "len":
		return fmt.Sprintf("%s must have length %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}
