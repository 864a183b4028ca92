package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/saadjs/gonext/internal/model"
)

var validate = validator.New()

var fieldMessages = map[string]string{
	"FilterConfig.MaxDistance.gte":  "must be >= 0",
	"FilterConfig.MinRating.gte":    "must be between 0 and 5",
	"FilterConfig.MinRating.lte":    "must be between 0 and 5",
	"FilterConfig.SortBy.oneof":     "must be distance or rating",
	"eventInput.Date.required":      "is required",
	"eventInput.Date.datetime":      "must be a date in YYYY-MM-DD format",
	"eventInput.Note.max":           "must be at most 100 characters",
	"signupInput.Name.required":     "is required",
	"signupInput.Email.required":    "is required",
	"signupInput.Email.email":       "must be a valid email address",
	"signupInput.Password.required": "is required",
	"loginInput.Email.required":     "is required",
	"loginInput.Password.required":  "is required",
}

// FieldErrors converts validator errors into {field: message} pairs.
func FieldErrors(err error) []map[string]string {
	out := make([]map[string]string, 0)
	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return out
	}
	for _, e := range validationErr {
		key := e.StructNamespace() + "." + e.Tag()
		msg := fmt.Sprintf("%s is invalid", e.Field())
		if v, ok := fieldMessages[key]; ok {
			msg = v
		}
		out = append(out, map[string]string{e.Field(): msg})
	}
	return out
}

// ValidateFilters checks FilterConfig invariants.
func ValidateFilters(f model.FilterConfig) error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if math.Mod(f.MinRating*2, 1) != 0 {
		return fmt.Errorf("%w: min rating must be a multiple of 0.5", ErrInvalidInput)
	}
	return nil
}
