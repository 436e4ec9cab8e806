package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/protomem/taskdesk/internal/model"
)

func TestValidator(t *testing.T) {
	var v Validator
	if v.HasErrors() || v.Err() != nil {
		t.Fatal("empty validator reports errors")
	}

	v.CheckField(NotBlank("  "), "title", "cannot be blank")
	v.CheckField(NotBlank(""), "title", "second message")
	v.Check(PermittedValue("urgent", "low", "medium", "high"), "priority is not permitted")

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	if got := v.FieldErrors["title"]; got != "cannot be blank" {
		t.Errorf("first field message should win, got %q", got)
	}

	err := v.Err()
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Err() = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "title cannot be blank") {
		t.Errorf("error text %q misses field message", err.Error())
	}

	var verr *Error
	if !errors.As(err, &verr) || len(verr.Errors) != 1 {
		t.Errorf("errors.As failed: %#v", err)
	}
}

func TestMaxRunes(t *testing.T) {
	if !MaxRunes("привет", 6) {
		t.Error("6 runes should fit 6")
	}
	if MaxRunes("привет!", 6) {
		t.Error("7 runes should not fit 6")
	}
}
