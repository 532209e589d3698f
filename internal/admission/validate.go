package admission

import (
	"fmt"
	"unicode"
)

// FieldError describes a failed argument check. Message is safe to
// return to a client: it names the field and the violated rule but
// never echoes the rejected value. Detail carries the extra context
// (offending length, bad rune position) for the server log only.
type FieldError struct {
	Field   string
	Message string
	Detail  string
}

func (e *FieldError) Error() string {
	return e.Message
}

// RequireString validates a mandatory string argument: non-empty, at
// most max bytes, and free of NUL and non-printable control
// characters. Returns the first violation found.
func RequireString(field, value string, max int) *FieldError {
	if value == "" {
		return &FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s cannot be empty", field),
		}
	}
	return checkString(field, value, max, false)
}

// OptionalText validates an optional freeform argument: empty passes,
// otherwise the same length and charset rules apply, except that tabs
// and newlines are allowed inside freeform text.
func OptionalText(field, value string, max int) *FieldError {
	if value == "" {
		return nil
	}
	return checkString(field, value, max, true)
}

func checkString(field, value string, max int, allowWhitespace bool) *FieldError {
	if len(value) > max {
		return &FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s exceeds maximum length of %d", field, max),
			Detail:  fmt.Sprintf("length %d", len(value)),
		}
	}
	for i, r := range value {
		if r == 0 || (unicode.IsControl(r) && !(allowWhitespace && (r == '\n' || r == '\r' || r == '\t'))) {
			return &FieldError{
				Field:   field,
				Message: fmt.Sprintf("%s contains invalid characters", field),
				Detail:  fmt.Sprintf("control character at byte %d", i),
			}
		}
	}
	return nil
}

// IntRange validates an integer argument against inclusive bounds.
func IntRange(field string, value, min, max int64) *FieldError {
	if value < min || value > max {
		return &FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d", field, min, max),
			Detail:  fmt.Sprintf("value out of range (got %d)", value),
		}
	}
	return nil
}

// FloatRange validates a decimal argument against inclusive bounds.
// NaN never satisfies the comparison chain, so it is rejected too.
func FloatRange(field string, value, min, max float64) *FieldError {
	if !(value >= min && value <= max) {
		return &FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %g and %g", field, min, max),
			Detail:  fmt.Sprintf("value out of range (got %g)", value),
		}
	}
	return nil
}

// Enum validates that value is one of the allowed strings.
func Enum(field, value string, allowed ...string) *FieldError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of the allowed values", field),
		Detail:  fmt.Sprintf("%d allowed values, none matched", len(allowed)),
	}
}

// FirstError returns the first non-nil field error, or nil. Mirrors
// the fail-fast contract: validation never partially accepts.
func FirstError(errs ...*FieldError) *FieldError {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
