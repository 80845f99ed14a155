package draft

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hanjob/resume-api/internal/models"
)

// krPhonePattern accepts digit groups joined by single hyphens, such as
// 010-1234-5678, 02-123-4567, 1588-1234 and 01012345678. Length is checked
// separately.
var krPhonePattern = regexp.MustCompile(`^\d+(-\d+)*$`)

const (
	minPhoneLength = 9
	maxPhoneLength = 13
)

var fieldLabels = map[models.Field]string{
	models.FieldName:        "Name",
	models.FieldEmail:       "Email",
	models.FieldPhone:       "Phone number",
	models.FieldNationality: "Nationality",
	models.FieldVisaType:    "Visa type",
}

// Validator checks a snapshot against the form rules. It is safe for
// concurrent use and performs no I/O.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the resume rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("krphone", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		return len(phone) >= minPhoneLength && len(phone) <= maxPhoneLength && krPhonePattern.MatchString(phone)
	})
	return &Validator{validate: v}
}

// Validate returns the field errors of snapshot; an empty map means valid.
// Values are trimmed before checking.
func (v *Validator) Validate(snapshot models.Snapshot) models.ValidationErrors {
	out := models.ValidationErrors{}

	err := v.validate.Struct(snapshot.Trimmed())
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}

	for _, fe := range fieldErrs {
		field, parseErr := models.ParseField(fe.Field())
		if parseErr != nil {
			continue
		}
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = fieldMessage(field, fe.Tag())
	}
	return out
}

func fieldMessage(field models.Field, tag string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = string(field)
	}
	switch tag {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email format"
	case "krphone":
		return "Invalid phone number format (e.g. 010-1234-5678)"
	default:
		return label + " is invalid"
	}
}
