// Package validation implements field-level validation for the booking wizard.
//
// Every validator takes the current error snapshot and returns a new one;
// the input map is never modified. A field that is absent from the snapshot
// is currently valid.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Field names used as error keys.
const (
	FieldAddress = "address"
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
)

// Messages for format failures.
const (
	MsgInvalidEmail = "Please enter a valid email address"
	MsgInvalidPhone = "Please enter a valid phone number"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[1-9][0-9]{0,15}$`)
	whitespace   = regexp.MustCompile(`\s`)
)

// Errors maps a field name to a human-readable message.
type Errors map[string]string

// Has reports whether field currently has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the invalid field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns an independent copy of the snapshot. Clone of nil is an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e Errors) with(field, msg string) Errors {
	out := e.Clone()
	out[field] = msg
	return out
}

func (e Errors) without(field string) Errors {
	out := e.Clone()
	delete(out, field)
	return out
}

// RequiredMessage is the message recorded for an empty required field.
func RequiredMessage(field string) string {
	return fmt.Sprintf("%s is required", field)
}

// Required checks that value is non-empty after trimming.
func Required(errs Errors, field, value string) (Errors, bool) {
	if strings.TrimSpace(value) == "" {
		return errs.with(field, RequiredMessage(field)), false
	}
	return errs.without(field), true
}

// IsEmail reports whether value has the local-part@domain.tld shape.
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// Email checks the email field. A required failure takes precedence over
// a format failure.
func Email(errs Errors, value string) (Errors, bool) {
	errs, ok := Required(errs, FieldEmail, value)
	if !ok {
		return errs, false
	}
	if !IsEmail(value) {
		return errs.with(FieldEmail, MsgInvalidEmail), false
	}
	return errs.without(FieldEmail), true
}

// IsPhone reports whether value, ignoring whitespace, looks like a dialable number.
func IsPhone(value string) bool {
	return phonePattern.MatchString(whitespace.ReplaceAllString(value, ""))
}

// Phone checks the phone field. A required failure takes precedence over
// a format failure.
func Phone(errs Errors, value string) (Errors, bool) {
	errs, ok := Required(errs, FieldPhone, value)
	if !ok {
		return errs, false
	}
	if !IsPhone(value) {
		return errs.with(FieldPhone, MsgInvalidPhone), false
	}
	return errs.without(FieldPhone), true
}

// Clear returns an empty snapshot.
func Clear() Errors {
	return Errors{}
}

// ClearField returns a snapshot without field.
func ClearField(errs Errors, field string) Errors {
	return errs.without(field)
}
