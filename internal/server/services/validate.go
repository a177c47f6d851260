package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/go-playground/validator/v10"
)

// newValidator reports struct fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs v over in and converts failures into a
// *common.ValidationError naming every offending field.
func validateInput(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	missing := make([]string, 0, len(verrs))
	invalid := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return common.NewValidationError("missing required fields", missing...)
	}
	return common.NewValidationError("invalid value", invalid...)
}
