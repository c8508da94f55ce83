package service

import (
	"fmt"
)

// FieldError is a rejection of a request tied to a single input field.
// Handlers serialize it into the $errors envelope keyed by Field, so
// the message must be safe to show to the client.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// fieldErr builds a FieldError.
func fieldErr(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Common field-level rejections shared between pre-checks and
// constraint-violation mapping, so a race surfaces the same message.
func errNotFound(field, what string) error {
	return fieldErr(field, "this %s does not exist", what)
}

func errDuplicate(field, what, value string) error {
	return fieldErr(field, "this %s %q already exists", what, value)
}

func errPermission(reason string) error {
	return fieldErr("permission", "%s", reason)
}
