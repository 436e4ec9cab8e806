package validator

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/protomem/taskdesk/internal/model"
)

type Validator struct {
	Errors      []string          `json:"errors,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0 || len(v.FieldErrors) != 0
}

func (v *Validator) AddError(message string) {
	v.Errors = append(v.Errors, message)
}

// AddFieldError keeps the first message reported for a field.
func (v *Validator) AddFieldError(key, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = map[string]string{}
	}

	if _, exists := v.FieldErrors[key]; !exists {
		v.FieldErrors[key] = message
	}
}

func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

func (v *Validator) CheckField(ok bool, key, message string) {
	if !ok {
		v.AddFieldError(key, message)
	}
}

// Err returns nil when nothing failed, otherwise an error matching model.ErrValidation.
func (v Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return &Error{Validator: v}
}

type Error struct {
	Validator
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Errors)+len(e.FieldErrors))
	parts = append(parts, e.Errors...)

	keys := make([]string, 0, len(e.FieldErrors))
	for key := range e.FieldErrors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, key+" "+e.FieldErrors[key])
	}

	return model.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return model.ErrValidation
}

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	for i := range permittedValues {
		if value == permittedValues[i] {
			return true
		}
	}
	return false
}
