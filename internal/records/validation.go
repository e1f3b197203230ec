package records

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ekonum/internal/platform/httpx"
)

var structValidator = validator.New()

// Validate checks the struct tags of a record and reports failed fields as a
// validation error.
func Validate(record any) error {
	err := structValidator.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		if fieldErr.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fieldErr.Field(), fieldErr.Tag(), fieldErr.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(parts, ", "))
}
