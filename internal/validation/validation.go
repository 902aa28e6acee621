// Package validation collects per-field errors for submitted forms.
//
// Rules never stop at the first failure: every field is checked and the
// first message for each field is kept. Rules other than Required accept an
// empty value so optional fields can share the same rule chain.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"arogyam-go/internal/utils"
)

const dateLayout = "2006-01-02"

// Form holds submitted values and the errors found in them.
type Form struct {
	values map[string]string
	Errors map[string]string
}

func New(values map[string]string) *Form {
	trimmed := make(map[string]string, len(values))
	for k, v := range values {
		trimmed[k] = strings.TrimSpace(v)
	}
	return &Form{values: trimmed, Errors: map[string]string{}}
}

// Get returns the trimmed value of field.
func (f *Form) Get(field string) string {
	return f.values[field]
}

// Valid reports whether the form can be submitted.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// AddError records msg for field unless the field already has an error.
func (f *Form) AddError(field, msg string) {
	if _, exists := f.Errors[field]; exists {
		return
	}
	f.Errors[field] = msg
}

func (f *Form) Required(fields ...string) *Form {
	for _, field := range fields {
		if f.values[field] == "" {
			f.AddError(field, "This field is required")
		}
	}
	return f
}

func (f *Form) Email(field string) *Form {
	if v := f.values[field]; v != "" && !utils.IsValidEmail(v) {
		f.AddError(field, "Enter a valid email address")
	}
	return f
}

func (f *Form) Phone(field string) *Form {
	if v := f.values[field]; v != "" && !utils.IsValidPhone(v) {
		f.AddError(field, "Enter a valid phone number")
	}
	return f
}

func (f *Form) MinLength(field string, n int) *Form {
	if v := f.values[field]; v != "" && len([]rune(v)) < n {
		f.AddError(field, fmt.Sprintf("Must be at least %d characters", n))
	}
	return f
}

func (f *Form) MaxLength(field string, n int) *Form {
	if v := f.values[field]; len([]rune(v)) > n {
		f.AddError(field, fmt.Sprintf("Must be at most %d characters", n))
	}
	return f
}

func (f *Form) OneOf(field string, options ...string) *Form {
	v := f.values[field]
	if v == "" {
		return f
	}
	for _, o := range options {
		if v == o {
			return f
		}
	}
	f.AddError(field, "Choose one of the listed options")
	return f
}

// DateNotPast requires a YYYY-MM-DD date on or after the day of today.
func (f *Form) DateNotPast(field string, today time.Time) *Form {
	v := f.values[field]
	if v == "" {
		return f
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		f.AddError(field, "Enter a date as YYYY-MM-DD")
		return f
	}
	y, m, day := today.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		f.AddError(field, "Date cannot be in the past")
	}
	return f
}

// Range requires an integer within [min, max].
func (f *Form) Range(field string, min, max int) *Form {
	v := f.values[field]
	if v == "" {
		return f
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		f.AddError(field, fmt.Sprintf("Must be a number between %d and %d", min, max))
	}
	return f
}

// Date returns the parsed value of a field that passed DateNotPast.
func (f *Form) Date(field string) time.Time {
	d, _ := time.Parse(dateLayout, f.values[field])
	return d
}

// Int returns the parsed value of a field that passed Range, or zero.
func (f *Form) Int(field string) int {
	n, _ := strconv.Atoi(f.values[field])
	return n
}
