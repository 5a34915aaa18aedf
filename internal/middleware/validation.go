package middleware

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "salespulse/internal/errors"
)

// QueryDateLayout is the date format accepted in query parameters
const QueryDateLayout = "2006-01-02"

// Validator checks decoded request parameters against struct tags. Field
// names in errors come from the `query` tag, falling back to `json`.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom tags used by the API:
//
//	isodate      YYYY-MM-DD calendar date
//	dategtefield date that is not before the named sibling date field
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("isodate", isISODate)
	_ = v.RegisterValidation("dategtefield", isDateOnOrAfterField)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// ValidateStruct returns an APIError listing every failing field, or nil
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ErrValidationFailed
	}

	validationErrors := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(validationErrors)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "dategtefield":
		return fmt.Sprintf("%s must not be before %s", field, strings.ToLower(param))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(QueryDateLayout, fl.Field().String())
	return err == nil
}

// isDateOnOrAfterField passes when either side is empty or unparsable;
// those cases are reported by the isodate tag instead.
func isDateOnOrAfterField(fl validator.FieldLevel) bool {
	other, _, _, ok := fl.GetStructFieldOK2()
	if !ok || other.Kind() != reflect.String {
		return true
	}

	end, errEnd := time.Parse(QueryDateLayout, fl.Field().String())
	start, errStart := time.Parse(QueryDateLayout, other.String())
	if errEnd != nil || errStart != nil {
		return true
	}
	return !end.Before(start)
}
