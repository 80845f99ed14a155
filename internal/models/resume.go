package models

import (
	"errors"
	"fmt"
	"strings"
)

// Field names one of the fixed resume form fields.
type Field string

const (
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldNationality  Field = "nationality"
	FieldVisaType     Field = "visaType"
	FieldEducation    Field = "education"
	FieldExperience   Field = "experience"
	FieldSkills       Field = "skills"
	FieldLanguages    Field = "languages"
	FieldIntroduction Field = "introduction"
)

// AllFields lists every form field in display order.
var AllFields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldNationality,
	FieldVisaType,
	FieldEducation,
	FieldExperience,
	FieldSkills,
	FieldLanguages,
	FieldIntroduction,
}

// ErrUnknownField is returned for a field name outside the fixed schema.
var ErrUnknownField = errors.New("unknown field")

// ParseField converts a wire name into a Field.
func ParseField(name string) (Field, error) {
	for _, f := range AllFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownField)
}

// Snapshot is a complete copy of the form at one instant. It is a value type:
// copies never alias, and two snapshots compare equal with ==.
type Snapshot struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,krphone"`
	Nationality  string `json:"nationality" validate:"required"`
	VisaType     string `json:"visaType" validate:"required"`
	Education    string `json:"education"`
	Experience   string `json:"experience"`
	Skills       string `json:"skills"`
	Languages    string `json:"languages"`
	Introduction string `json:"introduction"`
}

// Get returns the value of f. Unknown fields read as empty.
func (s Snapshot) Get(f Field) string {
	if p := s.ptr(f); p != nil {
		return *p
	}
	return ""
}

// With returns a copy of s with f set to value.
func (s Snapshot) With(f Field, value string) (Snapshot, error) {
	p := s.ptr(f)
	if p == nil {
		return s, fmt.Errorf("%q: %w", f, ErrUnknownField)
	}
	*p = value
	return s, nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s Snapshot) Trimmed() Snapshot {
	for _, f := range AllFields {
		p := s.ptr(f)
		*p = strings.TrimSpace(*p)
	}
	return s
}

// IsZero reports whether every field is empty.
func (s Snapshot) IsZero() bool {
	return s == Snapshot{}
}

// ToMap renders the snapshot keyed by wire field name.
func (s Snapshot) ToMap() map[string]string {
	out := make(map[string]string, len(AllFields))
	for _, f := range AllFields {
		out[string(f)] = s.Get(f)
	}
	return out
}

func (s *Snapshot) ptr(f Field) *string {
	switch f {
	case FieldName:
		return &s.Name
	case FieldEmail:
		return &s.Email
	case FieldPhone:
		return &s.Phone
	case FieldNationality:
		return &s.Nationality
	case FieldVisaType:
		return &s.VisaType
	case FieldEducation:
		return &s.Education
	case FieldExperience:
		return &s.Experience
	case FieldSkills:
		return &s.Skills
	case FieldLanguages:
		return &s.Languages
	case FieldIntroduction:
		return &s.Introduction
	}
	return nil
}

// ValidationErrors maps a field to a human readable message. A missing key
// means the field is valid; an empty map means the snapshot is valid.
type ValidationErrors map[Field]string

// Valid reports whether no field failed validation.
func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}
